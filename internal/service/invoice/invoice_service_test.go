package invoice

import (
	"context"
	"testing"
	"time"

	"gymbill-service/internal/domain/analytics"
	domain "gymbill-service/internal/domain/invoice"
	xerrors "gymbill-service/internal/pkg/errors"
	"gymbill-service/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	store   *testutil.InMemoryInvoiceStore
	service *InvoiceService
	ctx     context.Context
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (s *InvoiceServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewInMemoryInvoiceStore()
	s.service = NewInvoiceService(s.store, nil, zap.NewNop())
}

func (s *InvoiceServiceTestSuite) seedInvoice(status domain.InvoiceStatus) *domain.Invoice {
	inv := &domain.Invoice{
		Reference:     "01HTEST0000000000000000000",
		InvoiceNumber: "INV-202403-000001",
		TenantID:      1,
		PeriodMonth:   3,
		PeriodYear:    2024,
		MemberCount:   40,
		RatePerMember: decimal.NewFromInt(75),
		TotalAmount:   decimal.NewFromInt(3000),
		Status:        domain.InvoiceStatusPending,
		PaidAmount:    decimal.Zero,
		DueDate:       time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Insert(s.ctx, inv))

	switch status {
	case domain.InvoiceStatusOverdue:
		s.Require().NoError(s.store.TransitionStatus(s.ctx, inv.ID,
			[]domain.InvoiceStatus{domain.InvoiceStatusPending}, domain.InvoiceStatusOverdue, ""))
	case domain.InvoiceStatusCancelled:
		s.Require().NoError(s.store.TransitionStatus(s.ctx, inv.ID,
			[]domain.InvoiceStatus{domain.InvoiceStatusPending}, domain.InvoiceStatusCancelled, ""))
	case domain.InvoiceStatusPaid:
		s.Require().NoError(s.store.MarkPaid(s.ctx, inv.ID, inv.TotalAmount, time.Now().UTC(), "cash", "", ""))
	}

	current, err := s.store.FindByID(s.ctx, inv.ID)
	s.Require().NoError(err)
	return current
}

func (s *InvoiceServiceTestSuite) TestRecordPaymentSettlesPendingInFull() {
	inv := s.seedInvoice(domain.InvoiceStatusPending)

	result, err := s.service.RecordPayment(s.ctx, inv.ID, &domain.RecordPaymentRequest{
		PaymentMethod:    "bank_transfer",
		PaymentReference: "TXN-42",
		Notes:            "march settlement",
	})

	s.Require().NoError(err)
	s.Equal(domain.InvoiceStatusPaid, result.Status)
	s.True(result.PaidAmount.Equal(result.TotalAmount))
	s.NotNil(result.PaidAt)
	s.Equal("bank_transfer", result.PaymentMethod)
	s.Equal("TXN-42", result.PaymentReference)
	s.Equal("march settlement", result.Notes)
}

func (s *InvoiceServiceTestSuite) TestRecordPaymentSettlesOverdue() {
	inv := s.seedInvoice(domain.InvoiceStatusOverdue)

	result, err := s.service.RecordPayment(s.ctx, inv.ID, &domain.RecordPaymentRequest{
		PaymentMethod: "mpesa",
	})

	s.Require().NoError(err)
	s.Equal(domain.InvoiceStatusPaid, result.Status)
	s.True(result.PaidAmount.Equal(decimal.NewFromInt(3000)))
}

func (s *InvoiceServiceTestSuite) TestRecordPaymentOnPaidFailsAlreadySettled() {
	inv := s.seedInvoice(domain.InvoiceStatusPaid)

	_, err := s.service.RecordPayment(s.ctx, inv.ID, &domain.RecordPaymentRequest{
		PaymentMethod: "cash",
	})

	s.ErrorIs(err, xerrors.ErrAlreadySettled)
}

func (s *InvoiceServiceTestSuite) TestRecordPaymentOnCancelledFailsAndMutatesNothing() {
	inv := s.seedInvoice(domain.InvoiceStatusCancelled)

	_, err := s.service.RecordPayment(s.ctx, inv.ID, &domain.RecordPaymentRequest{
		PaymentMethod: "cash",
	})

	s.ErrorIs(err, xerrors.ErrCancelled)

	current, findErr := s.store.FindByID(s.ctx, inv.ID)
	s.Require().NoError(findErr)
	s.Equal(domain.InvoiceStatusCancelled, current.Status)
	s.True(current.PaidAmount.IsZero())
	s.Nil(current.PaidAt)
}

func (s *InvoiceServiceTestSuite) TestRecordPaymentUnknownInvoice() {
	_, err := s.service.RecordPayment(s.ctx, 9999, &domain.RecordPaymentRequest{
		PaymentMethod: "cash",
	})

	s.ErrorIs(err, xerrors.ErrNotFound)
}

func (s *InvoiceServiceTestSuite) TestRecordPaymentDropsCachedRevenueSnapshot() {
	mr := miniredis.RunT(s.T())
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	service := NewInvoiceService(s.store, cache, zap.NewNop())

	inv := s.seedInvoice(domain.InvoiceStatusPending)
	key := analytics.SnapshotCacheKey(inv.PeriodMonth, inv.PeriodYear)
	otherKey := analytics.SnapshotCacheKey(2, inv.PeriodYear)
	s.Require().NoError(cache.Set(s.ctx, key, "{}", 0).Err())
	s.Require().NoError(cache.Set(s.ctx, otherKey, "{}", 0).Err())

	_, err := service.RecordPayment(s.ctx, inv.ID, &domain.RecordPaymentRequest{
		PaymentMethod: "mpesa",
	})

	s.Require().NoError(err)
	s.False(mr.Exists(key), "paid period snapshot should be evicted")
	s.True(mr.Exists(otherKey), "unrelated periods stay cached")
}

func (s *InvoiceServiceTestSuite) TestCancelDropsCachedRevenueSnapshot() {
	mr := miniredis.RunT(s.T())
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	service := NewInvoiceService(s.store, cache, zap.NewNop())

	inv := s.seedInvoice(domain.InvoiceStatusPending)
	key := analytics.SnapshotCacheKey(inv.PeriodMonth, inv.PeriodYear)
	s.Require().NoError(cache.Set(s.ctx, key, "{}", 0).Err())

	_, err := service.CancelInvoice(s.ctx, inv.ID, "closed mid-month")

	s.Require().NoError(err)
	s.False(mr.Exists(key))
}

func (s *InvoiceServiceTestSuite) TestCancelPendingInvoice() {
	inv := s.seedInvoice(domain.InvoiceStatusPending)

	result, err := s.service.CancelInvoice(s.ctx, inv.ID, "duplicate billing")

	s.Require().NoError(err)
	s.Equal(domain.InvoiceStatusCancelled, result.Status)
	s.Equal("duplicate billing", result.Notes)
}

func (s *InvoiceServiceTestSuite) TestCancelPaidInvoiceRejected() {
	inv := s.seedInvoice(domain.InvoiceStatusPaid)

	_, err := s.service.CancelInvoice(s.ctx, inv.ID, "")

	s.ErrorIs(err, xerrors.ErrAlreadySettled)

	current, findErr := s.store.FindByID(s.ctx, inv.ID)
	s.Require().NoError(findErr)
	s.Equal(domain.InvoiceStatusPaid, current.Status)
}

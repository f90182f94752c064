package invoice

import (
	"testing"

	xerrors "gymbill-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsPartialPayment(t *testing.T) {
	base := Invoice{
		MemberCount:   40,
		RatePerMember: decimal.NewFromInt(75),
		TotalAmount:   decimal.NewFromInt(3000),
		Status:        InvoiceStatusPending,
	}

	tests := []struct {
		name       string
		paidAmount decimal.Decimal
		wantErr    error
	}{
		{name: "unpaid", paidAmount: decimal.Zero},
		{name: "settled in full", paidAmount: decimal.NewFromInt(3000)},
		{name: "partial payment", paidAmount: decimal.NewFromInt(1500), wantErr: xerrors.ErrInvalidInput},
		{name: "overpayment", paidAmount: decimal.NewFromInt(3001), wantErr: xerrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := base
			inv.PaidAmount = tt.paidAmount

			err := inv.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

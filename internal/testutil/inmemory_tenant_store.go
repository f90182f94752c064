package testutil

import (
	"context"
	"sync"
	"time"

	"gymbill-service/internal/domain/tenant"
	xerrors "gymbill-service/internal/pkg/errors"
)

// InMemoryTenantStore implements tenant.Repository.
type InMemoryTenantStore struct {
	mu      sync.RWMutex
	nextID  int64
	tenants map[int64]*tenant.Tenant
}

func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		nextID:  1,
		tenants: make(map[int64]*tenant.Tenant),
	}
}

func copyTenant(t *tenant.Tenant) *tenant.Tenant {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func (s *InMemoryTenantStore) Create(_ context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	s.tenants[t.ID] = copyTenant(t)
	return nil
}

func (s *InMemoryTenantStore) FindByID(_ context.Context, id int64) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return copyTenant(t), nil
}

func (s *InMemoryTenantStore) ListActive(_ context.Context) ([]tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []tenant.Tenant
	for id := int64(1); id < s.nextID; id++ {
		if t, ok := s.tenants[id]; ok && t.Status == tenant.TenantStatusActive {
			result = append(result, *copyTenant(t))
		}
	}
	return result, nil
}

func (s *InMemoryTenantStore) List(_ context.Context, filters *tenant.ListFilters) ([]tenant.Tenant, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []tenant.Tenant
	for id := int64(1); id < s.nextID; id++ {
		t, ok := s.tenants[id]
		if !ok {
			continue
		}
		if filters.Status != nil && t.Status != *filters.Status {
			continue
		}
		result = append(result, *copyTenant(t))
	}
	return result, int64(len(result)), nil
}

func (s *InMemoryTenantStore) UpdatePricing(_ context.Context, id int64, profile tenant.BillingProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return xerrors.ErrNotFound
	}

	t.Billing = profile
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SetStatus flips a tenant's active flag, for test setup.
func (s *InMemoryTenantStore) SetStatus(id int64, status tenant.TenantStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tenants[id]; ok {
		t.Status = status
	}
}

// FixedMemberCensus implements tenant.MemberCensus with static per-tenant counts.
type FixedMemberCensus struct {
	mu     sync.RWMutex
	counts map[int64]int
	errs   map[int64]error
}

func NewFixedMemberCensus() *FixedMemberCensus {
	return &FixedMemberCensus{
		counts: make(map[int64]int),
		errs:   make(map[int64]error),
	}
}

func (c *FixedMemberCensus) SetCount(tenantID int64, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[tenantID] = count
}

func (c *FixedMemberCensus) SetError(tenantID int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[tenantID] = err
}

func (c *FixedMemberCensus) ActiveMemberCount(_ context.Context, tenantID int64) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err, ok := c.errs[tenantID]; ok {
		return 0, err
	}
	return c.counts[tenantID], nil
}

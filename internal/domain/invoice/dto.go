// internal/domain/invoice/dto.go
package invoice

type RecordPaymentRequest struct {
	PaymentMethod    string `json:"payment_method" binding:"required"`
	PaymentReference string `json:"payment_reference"`
	Notes            string `json:"notes"`
}

type CancelInvoiceRequest struct {
	Notes string `json:"notes"`
}

type ListFilters struct {
	Status      *InvoiceStatus `form:"status"`
	TenantID    *int64         `form:"tenant_id"`
	PeriodMonth *int           `form:"month"`
	PeriodYear  *int           `form:"year"`
	Page        int            `form:"page"`
	PageSize    int            `form:"page_size"`
}

type ListResponse struct {
	Invoices []Invoice `json:"invoices"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// TenantFailure records why one tenant's invoice could not be generated
// during a batch run.
type TenantFailure struct {
	TenantID int64  `json:"tenant_id"`
	Reason   string `json:"reason"`
}

// GenerationSummary is the outcome of one generation run. A batch never
// fails as a whole; per-tenant outcomes are aggregated here.
type GenerationSummary struct {
	Created int             `json:"created"`
	Skipped int             `json:"skipped"`
	Failed  []TenantFailure `json:"failed"`
}

type SweepSummary struct {
	Transitioned int `json:"transitioned"`
}

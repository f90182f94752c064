// internal/handlers/billing/billing_handler.go
package billing

import (
	"net/http"
	"time"

	"gymbill-service/internal/pkg/response"
	service "gymbill-service/internal/service/billing"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billingService *service.BillingService
}

func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// GenerateInvoices triggers a generation run for the current period. Safe to
// call repeatedly; already-generated tenants are reported as skipped.
// Optional ?reference_date=YYYY-MM-DD pins the run to a specific date.
func (h *BillingHandler) GenerateInvoices(c *gin.Context) {
	refDate, ok := h.referenceDate(c)
	if !ok {
		return
	}

	summary, err := h.billingService.GenerateMonthlyInvoices(c.Request.Context(), refDate)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "invoice generation failed", err, summary)
		return
	}

	response.Success(c, http.StatusOK, "invoice generation complete", summary)
}

// CheckOverdueInvoices triggers the overdue sweep.
func (h *BillingHandler) CheckOverdueInvoices(c *gin.Context) {
	refDate, ok := h.referenceDate(c)
	if !ok {
		return
	}

	summary, err := h.billingService.SweepOverdueInvoices(c.Request.Context(), refDate)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "overdue sweep failed", err, summary)
		return
	}

	response.Success(c, http.StatusOK, "overdue sweep complete", summary)
}

func (h *BillingHandler) referenceDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("reference_date")
	if raw == "" {
		return time.Now().UTC(), true
	}

	refDate, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.ValidationError(c, "invalid reference_date, expected YYYY-MM-DD", err)
		return time.Time{}, false
	}

	return refDate.UTC(), true
}

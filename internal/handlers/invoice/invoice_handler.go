// internal/handlers/invoice/invoice_handler.go
package invoice

import (
	"net/http"
	"strconv"

	"gymbill-service/internal/domain/invoice"
	xerrors "gymbill-service/internal/pkg/errors"
	"gymbill-service/internal/pkg/response"
	service "gymbill-service/internal/service/invoice"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// ListInvoices returns invoices filtered by status, tenant and period.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filters invoice.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list invoices", err)
		return
	}

	response.Success(c, http.StatusOK, "invoices retrieved", result)
}

// GetInvoice retrieves a single invoice.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoiceID, ok := h.invoiceID(c)
	if !ok {
		return
	}

	result, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "invoice not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get invoice", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice retrieved", result)
}

// RecordPayment settles an invoice in full with the supplied settlement metadata.
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	invoiceID, ok := h.invoiceID(c)
	if !ok {
		return
	}

	var req invoice.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.invoiceService.RecordPayment(c.Request.Context(), invoiceID, &req)
	if err != nil {
		h.writeTransitionError(c, err, "failed to record payment")
		return
	}

	response.Success(c, http.StatusOK, "payment recorded", result)
}

// CancelInvoice cancels a pending or overdue invoice.
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	invoiceID, ok := h.invoiceID(c)
	if !ok {
		return
	}

	var req invoice.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.invoiceService.CancelInvoice(c.Request.Context(), invoiceID, req.Notes)
	if err != nil {
		h.writeTransitionError(c, err, "failed to cancel invoice")
		return
	}

	response.Success(c, http.StatusOK, "invoice cancelled", result)
}

func (h *InvoiceHandler) invoiceID(c *gin.Context) (int64, bool) {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid invoice ID", err)
		return 0, false
	}
	return invoiceID, true
}

func (h *InvoiceHandler) writeTransitionError(c *gin.Context, err error, message string) {
	switch {
	case xerrors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "invoice not found")
	case xerrors.Is(err, xerrors.ErrAlreadySettled):
		response.Conflict(c, "invoice already settled", err)
	case xerrors.Is(err, xerrors.ErrCancelled):
		response.Conflict(c, "invoice is cancelled", err)
	case xerrors.Is(err, xerrors.ErrInvalidTransition):
		response.Conflict(c, "invalid invoice status transition", err)
	default:
		response.Error(c, http.StatusInternalServerError, message, err)
	}
}

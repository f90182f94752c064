// internal/handlers/tenant/tenant_handler.go
package tenant

import (
	"net/http"
	"strconv"

	"gymbill-service/internal/domain/tenant"
	xerrors "gymbill-service/internal/pkg/errors"
	"gymbill-service/internal/pkg/response"
	service "gymbill-service/internal/service/tenant"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	tenantService *service.TenantService
}

func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// CreateTenant registers a gym with its billing profile.
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req tenant.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.tenantService.CreateTenant(c.Request.Context(), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) || xerrors.Is(err, xerrors.ErrConfiguration) {
			response.ValidationError(c, "invalid billing profile", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create tenant", err)
		return
	}

	response.Success(c, http.StatusCreated, "tenant created", result)
}

// GetTenant retrieves a tenant by ID.
func (h *TenantHandler) GetTenant(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	result, err := h.tenantService.GetTenant(c.Request.Context(), tenantID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "tenant not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get tenant", err)
		return
	}

	response.Success(c, http.StatusOK, "tenant retrieved", result)
}

// ListTenants returns tenants filtered by status.
func (h *TenantHandler) ListTenants(c *gin.Context) {
	var filters tenant.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	result, err := h.tenantService.ListTenants(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list tenants", err)
		return
	}

	response.Success(c, http.StatusOK, "tenants retrieved", result)
}

// UpdatePricing overwrites a tenant's billing profile. Existing invoices keep
// their generation-time snapshot.
func (h *TenantHandler) UpdatePricing(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req tenant.UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.tenantService.UpdateTenantPricing(c.Request.Context(), tenantID, &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "tenant not found")
		case xerrors.Is(err, xerrors.ErrInvalidInput), xerrors.Is(err, xerrors.ErrConfiguration):
			response.ValidationError(c, "invalid billing profile", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to update pricing", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "pricing updated", result)
}

func (h *TenantHandler) tenantID(c *gin.Context) (int64, bool) {
	tenantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid tenant ID", err)
		return 0, false
	}
	return tenantID, true
}

// internal/app/router.go
package app

import (
	analyticsHandler "gymbill-service/internal/handlers/analytics"
	billingHandler "gymbill-service/internal/handlers/billing"
	invoiceHandler "gymbill-service/internal/handlers/invoice"
	tenantHandler "gymbill-service/internal/handlers/tenant"
	"gymbill-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	BillingHandler   *billingHandler.BillingHandler
	InvoiceHandler   *invoiceHandler.InvoiceHandler
	TenantHandler    *tenantHandler.TenantHandler
	AnalyticsHandler *analyticsHandler.AnalyticsHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Billing Runs ====================
	billing := api.Group("/billing")
	billing.Use(h.AuthMiddleware.Auth())
	{
		billing.POST("/generate-invoices", h.BillingHandler.GenerateInvoices)
		billing.POST("/check-overdue-invoices", h.BillingHandler.CheckOverdueInvoices)
	}

	// ==================== Invoices ====================
	invoices := api.Group("/invoices")
	invoices.Use(h.AuthMiddleware.Auth())
	{
		invoices.GET("", h.InvoiceHandler.ListInvoices)
		invoices.GET("/:id", h.InvoiceHandler.GetInvoice)
		invoices.PATCH("/:id", h.InvoiceHandler.RecordPayment)
		invoices.POST("/:id/cancel", h.InvoiceHandler.CancelInvoice)
	}

	// ==================== Tenants ====================
	tenants := api.Group("/tenants")
	tenants.Use(h.AuthMiddleware.Auth())
	{
		tenants.GET("", h.TenantHandler.ListTenants)
		tenants.POST("", h.TenantHandler.CreateTenant)
		tenants.GET("/:id", h.TenantHandler.GetTenant)
		tenants.PATCH("/:id/pricing", h.TenantHandler.UpdatePricing)
	}

	// ==================== Analytics ====================
	analytics := api.Group("/analytics")
	analytics.Use(h.AuthMiddleware.Auth())
	{
		analytics.GET("/revenue", h.AnalyticsHandler.GetRevenueAnalytics)
	}
}

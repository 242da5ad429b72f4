package router

import (
	"github.com/gin-gonic/gin"

	"supercrm/internal/domain"
	"supercrm/internal/handler"
	"supercrm/internal/middleware"
	"supercrm/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	allowedOrigins []string,
	invoiceH *handler.InvoiceHandler,
	counterpartyH *handler.CounterpartyHandler,
	taxH *handler.TaxHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Authenticate(authSvc))

	writers := middleware.RequireRole(domain.RoleAccountant)
	admins := middleware.RequireRole(domain.RoleAdmin)

	// Invoices
	invoices := v1.Group("/invoices")
	invoices.GET("", invoiceH.List)
	invoices.GET("/export", invoiceH.Export)
	invoices.GET("/by-number", invoiceH.GetByNumber)
	invoices.POST("/preview", invoiceH.Preview)
	invoices.POST("", writers, invoiceH.Create)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.GET("/:id/pdf", invoiceH.DownloadPDF)
	invoices.GET("/:id/document-url", invoiceH.DocumentURL)
	invoices.POST("/:id/send", writers, invoiceH.Send)
	invoices.POST("/:id/viewed", writers, invoiceH.MarkViewed)
	invoices.POST("/:id/payments", writers, invoiceH.RecordPayment)
	invoices.POST("/:id/cancel", admins, invoiceH.Cancel)
	invoices.DELETE("/:id", admins, invoiceH.Delete)

	// Counterparties
	counterparties := v1.Group("/counterparties")
	counterparties.GET("", counterpartyH.List)
	counterparties.GET("/:id", counterpartyH.GetByID)
	counterparties.POST("", writers, counterpartyH.Create)

	// Stateless calculators
	tax := v1.Group("/tax")
	tax.POST("/gst", taxH.CalculateGST)
	tax.POST("/gst/invoice", taxH.CalculateInvoiceGST)
	tax.POST("/tds", taxH.CalculateTDS)
	tax.POST("/tds/invoice", taxH.CalculateInvoiceTDS)
	tax.GET("/tds/sections", taxH.TDSSections)
	tax.GET("/gstin/:gstin", taxH.LookupGSTIN)
	tax.GET("/financial-year", taxH.FinancialYear)
	tax.GET("/invoice-number", taxH.ParseInvoiceNumber)

	return r
}

package router

import (
	"github.com/gin-gonic/gin"

	"reportsvc/internal/handler"
	"reportsvc/internal/middleware"
	"reportsvc/internal/port"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	identity port.IdentityProvider,
	requestIDHeader string,
	reportH *handler.ReportHandler,
	parsedH *handler.ParsedHandler,
	paymentH *handler.PaymentHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID(requestIDHeader))
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/health", healthH.Health)
	r.GET("/ping", healthH.Ping)

	// Gateway webhook: unauthenticated, verified via the signed token
	// embedded in the body.
	r.POST("/yookassa/webhook", paymentH.Webhook)

	// Protected routes - require a resolvable bearer token
	protected := r.Group("")
	protected.Use(middleware.Auth(identity))

	reports := protected.Group("/reports")
	reports.POST("", reportH.Upload)
	reports.GET("", reportH.List)
	reports.DELETE("/:report_id", reportH.Delete)
	reports.GET("/:report_id/rows", reportH.GetRows)
	reports.GET("/:report_id/rows/detailed", reportH.GetDetailedRows)
	reports.GET("/:report_id/rows/detailed/export", reportH.ExportDetailedRows)
	reports.GET("/:report_id/price", paymentH.GetPrice)
	reports.POST("/:report_id/payment", paymentH.CreatePayment)

	// Worker-facing callback
	reports.PUT("/:report_id/parsed", middleware.RequireServiceRole(), parsedH.UploadParsingResult)

	return r
}

package api

import (
	"github.com/feeflow/feeflow/internal/api/middleware"
	v1 "github.com/feeflow/feeflow/internal/api/v1"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health       *v1.HealthHandler
	FeeStructure *v1.FeeStructureHandler
	Addon        *v1.AddonHandler
	Fee          *v1.FeeHandler
	Plan         *v1.PlanHandler
	Payment      *v1.PaymentHandler
	Invoice      *v1.InvoiceHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.RequestContext())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Fee structure catalog routes
	structures := router.Group("/fee-structures")
	{
		structures.POST("", handlers.FeeStructure.CreateFeeStructure)
		structures.GET("", handlers.FeeStructure.ListFeeStructures)
		structures.GET("/:id", handlers.FeeStructure.GetFeeStructure)
		structures.PUT("/:id", handlers.FeeStructure.UpdateFeeStructure)
		structures.DELETE("/:id", handlers.FeeStructure.DeleteFeeStructure)
		structures.POST("/:id/duplicate", handlers.FeeStructure.DuplicateFeeStructure)
	}

	// Add-on catalog routes
	addons := router.Group("/addon-catalog")
	{
		addons.GET("", handlers.Addon.GetAddonCatalog)
		addons.PUT("", handlers.Addon.UpdateAddonCatalog)
	}

	// Fee calculation routes
	fees := router.Group("/fees")
	{
		fees.POST("/compute", handlers.Fee.ComputeFees)
		fees.POST("/preview", handlers.Fee.PreviewFees)
	}

	// Installment plan routes
	plans := router.Group("/plans")
	{
		plans.POST("", handlers.Plan.CreatePlan)
		plans.GET("", handlers.Plan.ListPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
		plans.POST("/:id/cancel", handlers.Plan.CancelPlan)
		plans.POST("/preview", handlers.Plan.PreviewSchedule)
		plans.GET("/:id/stats", handlers.Payment.GetCollectionStats)
		plans.GET("/:id/invoice", handlers.Invoice.GetInvoice)
	}

	// Payment ledger routes
	payments := router.Group("/payments")
	{
		payments.POST("", handlers.Payment.RecordPayment)
		payments.GET("", handlers.Payment.ListPayments)
		payments.GET("/:id", handlers.Payment.GetPayment)
		payments.POST("/:id/verify", handlers.Payment.VerifyPayment)
		payments.POST("/:id/reject", handlers.Payment.RejectPayment)
	}
}

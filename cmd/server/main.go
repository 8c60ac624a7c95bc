package main

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/api"
	v1 "github.com/feeflow/feeflow/internal/api/v1"
	"github.com/feeflow/feeflow/internal/cache"
	"github.com/feeflow/feeflow/internal/config"
	"github.com/feeflow/feeflow/internal/directory"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/postgres"
	"github.com/feeflow/feeflow/internal/repository"
	"github.com/feeflow/feeflow/internal/service"
	"github.com/feeflow/feeflow/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,
			cache.NewInMemoryCache,
			postgres.NewDB,
			func(db *postgres.DB) service.TxManager { return db },

			// Student directory
			directory.NewDirectoryService,

			// Repositories
			repository.NewFeeStructureRepository,
			repository.NewAddonRepository,
			repository.NewInstallmentRepository,
			repository.NewPaymentRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewFeeStructureService,
			service.NewAddonCatalogService,
			service.NewFeeCalculationService,
			service.NewPlanService,
			service.NewLedgerService,
			service.NewInvoiceService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	feeStructureService service.FeeStructureService,
	addonCatalogService service.AddonCatalogService,
	feeCalculationService service.FeeCalculationService,
	planService service.PlanService,
	ledgerService service.LedgerService,
	invoiceService service.InvoiceService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(),
		FeeStructure: v1.NewFeeStructureHandler(feeStructureService, logger),
		Addon:        v1.NewAddonHandler(addonCatalogService, logger),
		Fee:          v1.NewFeeHandler(feeCalculationService, logger),
		Plan:         v1.NewPlanHandler(planService, logger),
		Payment:      v1.NewPaymentHandler(ledgerService, logger),
		Invoice:      v1.NewInvoiceHandler(invoiceService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("Starting API server on %s", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			db.Close()
			return nil
		},
	})
}

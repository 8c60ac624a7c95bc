package service

import (
	"context"

	"github.com/feeflow/feeflow/internal/config"
	"github.com/feeflow/feeflow/internal/domain/addon"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/domain/installment"
	"github.com/feeflow/feeflow/internal/domain/payment"
	"github.com/feeflow/feeflow/internal/domain/student"
	"github.com/feeflow/feeflow/internal/logger"
)

// TxManager runs a function inside a database transaction. Repository calls
// made with the context passed to the callback join the same transaction, so
// multi-write operations commit or roll back as one unit.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ServiceParams holds the dependencies injected into every service.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     TxManager

	FeeStructureRepo feestructure.Repository
	AddonRepo        addon.Repository
	PlanRepo         installment.Repository
	PaymentRepo      payment.Repository
	Directory        student.DirectoryService
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db TxManager,
	feeStructureRepo feestructure.Repository,
	addonRepo addon.Repository,
	planRepo installment.Repository,
	paymentRepo payment.Repository,
	directory student.DirectoryService,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		FeeStructureRepo: feeStructureRepo,
		AddonRepo:        addonRepo,
		PlanRepo:         planRepo,
		PaymentRepo:      paymentRepo,
		Directory:        directory,
	}
}

package repository

import (
	"github.com/feeflow/feeflow/internal/cache"
	"github.com/feeflow/feeflow/internal/domain/addon"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/domain/installment"
	"github.com/feeflow/feeflow/internal/domain/payment"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/postgres"
	cachedRepo "github.com/feeflow/feeflow/internal/repository/cached"
	postgresRepo "github.com/feeflow/feeflow/internal/repository/postgres"
)

func NewFeeStructureRepository(db *postgres.DB, logger *logger.Logger, c cache.Cache) feestructure.Repository {
	return cachedRepo.NewFeeStructureRepository(
		postgresRepo.NewFeeStructureRepository(db, logger), c, logger)
}

func NewAddonRepository(db *postgres.DB, logger *logger.Logger, c cache.Cache) addon.Repository {
	return cachedRepo.NewAddonRepository(
		postgresRepo.NewAddonRepository(db, logger), c, logger)
}

func NewInstallmentRepository(db *postgres.DB, logger *logger.Logger) installment.Repository {
	return postgresRepo.NewInstallmentRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

package testutil

import (
	"context"
	"time"

	"github.com/feeflow/feeflow/internal/config"
	"github.com/feeflow/feeflow/internal/directory"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/feeflow/feeflow/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces backed by in-memory
// implementations.
type Stores struct {
	FeeStructureRepo *InMemoryFeeStructureStore
	AddonRepo        *InMemoryAddonStore
	PlanRepo         *InMemoryInstallmentStore
	PaymentRepo      *InMemoryPaymentStore
	Directory        *directory.StubService
	DB               *InMemoryTxManager
}

// BaseServiceTestSuite provides common functionality for service tests:
// a context carrying user and request identity, fresh in-memory stores per
// test, and a shared logger and configuration.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before all tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()

	var err error
	s.logger, err = logger.NewLogger(s.config)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		FeeStructureRepo: NewInMemoryFeeStructureStore(),
		AddonRepo:        NewInMemoryAddonStore(),
		PlanRepo:         NewInMemoryInstallmentStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
		Directory:        directory.NewStubService(),
	}
	s.stores.DB = NewInMemoryTxManager(s.stores.PlanRepo, s.stores.PaymentRepo)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.FeeStructureRepo.Clear()
	s.stores.AddonRepo.Clear()
	s.stores.PlanRepo.Clear()
	s.stores.PaymentRepo.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time in UTC
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

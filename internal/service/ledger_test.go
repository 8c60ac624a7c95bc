package service

import (
	"testing"
	"time"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/testutil"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service LedgerService
	plans   PlanService
	plan    *dto.PlanResponse
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               stores.DB,
		FeeStructureRepo: stores.FeeStructureRepo,
		AddonRepo:        stores.AddonRepo,
		PlanRepo:         stores.PlanRepo,
		PaymentRepo:      stores.PaymentRepo,
		Directory:        stores.Directory,
	}
	s.service = NewLedgerService(params)
	s.plans = NewPlanService(params)

	structure := &feestructure.FeeStructure{
		ID:   "fs_ledger",
		Name: "BTech 2024",
		Categories: []feestructure.FeeCategory{
			{Name: types.FeeCategoryTuition, Amount: decimal.NewFromInt(150000)},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	structure.RecomputeBaseAmount()
	s.NoError(stores.FeeStructureRepo.Create(s.GetContext(), structure))

	total := decimal.NewFromInt(150000)
	plan, err := s.plans.Create(s.GetContext(), &dto.CreatePlanRequest{
		StudentID:            "std_1",
		FeeStructureID:       structure.ID,
		TotalAmount:          &total,
		NumberOfInstallments: 2,
		DueDateType:          types.DueDateTypeMonthly,
		StartDate:            time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		LateFeePercentage:    decimal.NewFromInt(5),
		GracePeriodDays:      7,
	})
	s.Require().NoError(err)
	s.plan = plan
}

func (s *LedgerServiceSuite) recordRequest(installmentID string) *dto.RecordPaymentRequest {
	return &dto.RecordPaymentRequest{
		StudentID:     "std_1",
		InstallmentID: installmentID,
		Amount:        decimal.NewFromInt(75000),
		PaymentDate:   time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC),
		PaymentMethod: types.PaymentMethodOnlineTransfer,
		TransactionID: "txn_" + installmentID,
	}
}

func (s *LedgerServiceSuite) TestRecord_ManualStartsPending() {
	resp, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)

	s.Equal(types.PaymentStatusPending, resp.PaymentStatus)
	s.Equal(types.PaymentSourceManual, resp.Source)
	s.Equal(s.plan.ID, resp.PlanID, "plan id backfilled from the installment")
	s.Empty(resp.ReceiptNumber)
	s.Equal(1, resp.Version)

	// Pending payments do not touch the installment.
	inst, err := s.GetStores().PlanRepo.GetInstallment(s.GetContext(), s.plan.Installments[0].ID)
	s.NoError(err)
	s.True(inst.PaidAmount.IsZero())
	s.Nil(inst.PaidDate)
}

func (s *LedgerServiceSuite) TestVerify_AppliesToInstallment() {
	recorded, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)

	verified, err := s.service.Verify(s.GetContext(), recorded.ID, recorded.Version)
	s.NoError(err)

	s.Equal(types.PaymentStatusCompleted, verified.PaymentStatus)
	s.NotEmpty(verified.ReceiptNumber)
	s.NotNil(verified.VerifiedBy)
	s.Equal(2, verified.Version)

	inst, err := s.GetStores().PlanRepo.GetInstallment(s.GetContext(), s.plan.Installments[0].ID)
	s.NoError(err)
	s.True(decimal.NewFromInt(75000).Equal(inst.PaidAmount))
	s.Require().NotNil(inst.PaidDate)
	s.Equal(time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC), *inst.PaidDate)
	s.Equal(verified.ReceiptNumber, inst.ReceiptNumber)
}

func (s *LedgerServiceSuite) TestVerify_StaleVersionLoses() {
	recorded, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)

	_, err = s.service.Verify(s.GetContext(), recorded.ID, recorded.Version)
	s.NoError(err)

	// A second caller still holding version 1 must lose.
	_, err = s.service.Verify(s.GetContext(), recorded.ID, recorded.Version)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err) || ierr.IsVersionConflict(err))

	// The applied amount is unchanged.
	inst, err := s.GetStores().PlanRepo.GetInstallment(s.GetContext(), s.plan.Installments[0].ID)
	s.NoError(err)
	s.True(decimal.NewFromInt(75000).Equal(inst.PaidAmount))
}

func (s *LedgerServiceSuite) TestReject() {
	recorded, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)

	rejected, err := s.service.Reject(s.GetContext(), recorded.ID, recorded.Version)
	s.NoError(err)
	s.Equal(types.PaymentStatusFailed, rejected.PaymentStatus)
	s.Empty(rejected.ReceiptNumber)

	inst, err := s.GetStores().PlanRepo.GetInstallment(s.GetContext(), s.plan.Installments[0].ID)
	s.NoError(err)
	s.True(inst.PaidAmount.IsZero())

	// Failed is terminal.
	_, err = s.service.Verify(s.GetContext(), recorded.ID, rejected.Version)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *LedgerServiceSuite) TestRecord_GatewayCompletesImmediately() {
	req := s.recordRequest(s.plan.Installments[0].ID)
	req.Source = types.PaymentSourceGateway
	req.GatewayIdentity = "razorpay"

	resp, err := s.service.Record(s.GetContext(), req)
	s.NoError(err)

	s.Equal(types.PaymentStatusCompleted, resp.PaymentStatus)
	s.NotEmpty(resp.ReceiptNumber)
	s.Require().NotNil(resp.VerifiedBy)
	s.Equal("razorpay", *resp.VerifiedBy)

	inst, err := s.GetStores().PlanRepo.GetInstallment(s.GetContext(), s.plan.Installments[0].ID)
	s.NoError(err)
	s.True(decimal.NewFromInt(75000).Equal(inst.PaidAmount))
}

func (s *LedgerServiceSuite) TestRecord_PlanMismatch() {
	req := s.recordRequest(s.plan.Installments[0].ID)
	req.PlanID = "plan_other"

	_, err := s.service.Record(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *LedgerServiceSuite) TestRecord_CancelledPlan() {
	_, err := s.plans.Cancel(s.GetContext(), s.plan.ID)
	s.NoError(err)

	_, err = s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *LedgerServiceSuite) TestRecord_UnlinkedPayment() {
	req := &dto.RecordPaymentRequest{
		StudentID:     "std_1",
		Amount:        decimal.NewFromInt(5000),
		PaymentDate:   time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		PaymentMethod: types.PaymentMethodCash,
	}

	resp, err := s.service.Record(s.GetContext(), req)
	s.NoError(err)
	s.Empty(resp.PlanID)
	s.Empty(resp.InstallmentID)
}

func (s *LedgerServiceSuite) TestRecord_DuplicateTransactionID() {
	_, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)

	_, err = s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *LedgerServiceSuite) TestPlanCompletesWhenAllInstallmentsPaid() {
	for i, inst := range s.plan.Installments {
		req := s.recordRequest(inst.ID)
		req.TransactionID = req.TransactionID + "_full"
		recorded, err := s.service.Record(s.GetContext(), req)
		s.NoError(err)
		_, err = s.service.Verify(s.GetContext(), recorded.ID, recorded.Version)
		s.NoError(err, "installment %d", i+1)
	}

	plan, err := s.GetStores().PlanRepo.GetPlan(s.GetContext(), s.plan.ID)
	s.NoError(err)
	s.Equal(types.PlanStatusCompleted, plan.PlanStatus)
	s.Equal(2, plan.Version)
}

func (s *LedgerServiceSuite) TestList_FiltersByStatus() {
	recorded, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)
	_, err = s.service.Verify(s.GetContext(), recorded.ID, recorded.Version)
	s.NoError(err)

	req := s.recordRequest(s.plan.Installments[1].ID)
	_, err = s.service.Record(s.GetContext(), req)
	s.NoError(err)

	pending := types.PaymentStatusPending.String()
	resp, err := s.service.List(s.GetContext(), &types.PaymentFilter{PaymentStatus: &pending})
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal(types.PaymentStatusPending, resp.Items[0].PaymentStatus)
}

func (s *LedgerServiceSuite) TestGetCollectionStats() {
	recorded, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)
	_, err = s.service.Verify(s.GetContext(), recorded.ID, recorded.Version)
	s.NoError(err)

	// A rejected transfer against the second installment.
	bounced, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[1].ID))
	s.NoError(err)
	_, err = s.service.Reject(s.GetContext(), bounced.ID, bounced.Version)
	s.NoError(err)

	// Past the second installment's grace deadline.
	asOf := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	stats, err := s.service.GetCollectionStats(s.GetContext(), s.plan.ID, asOf)
	s.NoError(err)

	s.True(decimal.NewFromInt(150000).Equal(stats.ExpectedTotal))
	s.True(decimal.NewFromInt(75000).Equal(stats.CollectedTotal))
	// 5% of the unpaid second installment.
	s.True(decimal.NewFromInt(3750).Equal(stats.LateFeesAccrued), "late fees %s", stats.LateFeesAccrued)
	s.True(decimal.NewFromInt(78750).Equal(stats.OutstandingTotal))
	s.Equal(1, stats.PaidCount)
	s.Equal(1, stats.OverdueCount)
	s.Equal(0, stats.PendingCount)

	s.Equal(2, stats.TotalPayments)
	s.Equal(1, stats.CompletedPayments)
	s.Equal(1, stats.FailedPayments)
	s.Equal(0, stats.PendingPayments)
	s.True(decimal.NewFromInt(50).Equal(stats.SuccessRate), "success rate %s", stats.SuccessRate)
}

func (s *LedgerServiceSuite) TestGetCollectionStats_NoPayments() {
	asOf := time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC)
	stats, err := s.service.GetCollectionStats(s.GetContext(), s.plan.ID, asOf)
	s.NoError(err)

	s.Equal(0, stats.TotalPayments)
	s.True(stats.SuccessRate.IsZero())
}

func (s *LedgerServiceSuite) TestVerify_RolledBackWhenApplyFails() {
	recorded, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)

	// The plan vanishes between recording and verification, so the credit
	// cannot be applied.
	s.GetStores().PlanRepo.RemovePlan(s.plan.ID)

	_, err = s.service.Verify(s.GetContext(), recorded.ID, recorded.Version)
	s.Error(err)

	// The transition rolled back with the failed credit: the payment is
	// still pending at its original version, not stranded in a terminal
	// state with nothing applied.
	p, err := s.GetStores().PaymentRepo.Get(s.GetContext(), recorded.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPending, p.PaymentStatus)
	s.Equal(1, p.Version)
	s.Empty(p.ReceiptNumber)
}

func (s *LedgerServiceSuite) TestVerify_ConcurrentPaymentsBothCredit() {
	// Two different payments against the same installment: the additive
	// credit must keep both.
	first, err := s.service.Record(s.GetContext(), s.recordRequest(s.plan.Installments[0].ID))
	s.NoError(err)

	second := s.recordRequest(s.plan.Installments[0].ID)
	second.Amount = decimal.NewFromInt(25000)
	second.TransactionID = "txn_partial"
	secondRecorded, err := s.service.Record(s.GetContext(), second)
	s.NoError(err)

	_, err = s.service.Verify(s.GetContext(), first.ID, first.Version)
	s.NoError(err)
	_, err = s.service.Verify(s.GetContext(), secondRecorded.ID, secondRecorded.Version)
	s.NoError(err)

	inst, err := s.GetStores().PlanRepo.GetInstallment(s.GetContext(), s.plan.Installments[0].ID)
	s.NoError(err)
	s.True(decimal.NewFromInt(100000).Equal(inst.PaidAmount), "paid %s", inst.PaidAmount)
}

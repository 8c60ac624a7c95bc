package service

import (
	"testing"
	"time"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/addon"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/domain/installment"
	"github.com/feeflow/feeflow/internal/domain/student"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/testutil"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   PlanService
	structure *feestructure.FeeStructure
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewPlanService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               stores.DB,
		FeeStructureRepo: stores.FeeStructureRepo,
		AddonRepo:        stores.AddonRepo,
		PlanRepo:         stores.PlanRepo,
		PaymentRepo:      stores.PaymentRepo,
		Directory:        stores.Directory,
	})

	s.structure = &feestructure.FeeStructure{
		ID:   "fs_plan",
		Name: "BTech 2024",
		Categories: []feestructure.FeeCategory{
			{Name: types.FeeCategoryTuition, Amount: decimal.NewFromInt(100000)},
			{Name: types.FeeCategoryLibrary, Amount: decimal.NewFromInt(20000)},
			{Name: types.FeeCategoryLab, Amount: decimal.NewFromInt(30000)},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.structure.RecomputeBaseAmount()
	s.NoError(stores.FeeStructureRepo.Create(s.GetContext(), s.structure))

	s.NoError(stores.AddonRepo.Update(s.GetContext(), &addon.Catalog{
		ID:        "addon_plan",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *PlanServiceSuite) createPlanRequest() *dto.CreatePlanRequest {
	total := decimal.NewFromInt(150000)
	return &dto.CreatePlanRequest{
		StudentID:            "std_1",
		FeeStructureID:       s.structure.ID,
		TotalAmount:          &total,
		NumberOfInstallments: 4,
		DueDateType:          types.DueDateTypeMonthly,
		StartDate:            time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		LateFeePercentage:    decimal.NewFromInt(5),
		GracePeriodDays:      7,
	}
}

func (s *PlanServiceSuite) TestCreate_ExplicitTotal() {
	// Start in the future so the statuses derived at creation time are
	// pending regardless of when the test runs.
	start := types.DateOnly(s.GetNow().AddDate(0, 1, 0))
	req := s.createPlanRequest()
	req.StartDate = start

	resp, err := s.service.Create(s.GetContext(), req)
	s.NoError(err)

	s.Equal(types.PlanStatusActive, resp.PlanStatus)
	s.Equal(1, s.mustGetPlan(resp.ID).Version)
	s.Len(resp.Installments, 4)
	for i, inst := range resp.Installments {
		s.Equal(i+1, inst.InstallmentNumber)
		s.True(decimal.NewFromInt(37500).Equal(inst.Amount))
		s.Equal(types.InstallmentStatusPending, inst.Status)

		expectedDue, err := types.NthDueDate(start, i, types.DueDateTypeMonthly)
		s.NoError(err)
		s.Equal(expectedDue, inst.DueDate)
	}
}

func (s *PlanServiceSuite) TestCreate_ComputedTotal() {
	s.GetStores().Directory.Register(&student.FeeProfile{
		StudentID:             "std_1",
		Program:               "BTech",
		Category:              types.StudentCategoryScholarship,
		ScholarshipType:       "merit",
		ScholarshipPercentage: decimal.NewFromInt(25),
	})

	req := s.createPlanRequest()
	req.TotalAmount = nil

	resp, err := s.service.Create(s.GetContext(), req)
	s.NoError(err)
	// 80000 tuition + 50000 other lines - 20000 scholarship
	s.True(decimal.NewFromInt(110000).Equal(resp.TotalAmount), "total %s", resp.TotalAmount)
}

func (s *PlanServiceSuite) TestCreate_InactiveStructure() {
	s.NoError(s.GetStores().FeeStructureRepo.Archive(s.GetContext(), s.structure.ID))

	_, err := s.service.Create(s.GetContext(), s.createPlanRequest())
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PlanServiceSuite) TestCreate_NegativeTotal() {
	req := s.createPlanRequest()
	negative := decimal.NewFromInt(-1)
	req.TotalAmount = &negative

	_, err := s.service.Create(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestGet_DerivesStatusesAgainstAsOf() {
	created, err := s.service.Create(s.GetContext(), s.createPlanRequest())
	s.NoError(err)

	// Past the first installment's grace deadline, before the second's.
	resp, err := s.service.Get(s.GetContext(), created.ID,
		time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC))
	s.NoError(err)

	s.Equal(types.InstallmentStatusOverdue, resp.Installments[0].Status)
	s.True(decimal.NewFromInt(1875).Equal(resp.Installments[0].LateFee))
	s.Equal(types.InstallmentStatusPending, resp.Installments[1].Status)
	s.True(resp.Installments[1].LateFee.IsZero())
}

func (s *PlanServiceSuite) TestList_FiltersByStudent() {
	_, err := s.service.Create(s.GetContext(), s.createPlanRequest())
	s.NoError(err)

	other := s.createPlanRequest()
	other.StudentID = "std_2"
	_, err = s.service.Create(s.GetContext(), other)
	s.NoError(err)

	studentID := "std_2"
	resp, err := s.service.List(s.GetContext(), &installment.PlanFilter{StudentID: &studentID}, time.Time{})
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal("std_2", resp.Items[0].StudentID)
}

func (s *PlanServiceSuite) TestCancel() {
	created, err := s.service.Create(s.GetContext(), s.createPlanRequest())
	s.NoError(err)

	resp, err := s.service.Cancel(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.PlanStatusCancelled, resp.PlanStatus)
	s.Equal(2, s.mustGetPlan(created.ID).Version)

	// Cancelled is terminal.
	_, err = s.service.Cancel(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PlanServiceSuite) TestPreviewSchedule_Deterministic() {
	req := &dto.PreviewScheduleRequest{
		TotalAmount:          decimal.NewFromInt(100000),
		NumberOfInstallments: 3,
		DiscountPercent:      decimal.NewFromInt(10),
		DueDateType:          types.DueDateTypeMonthly,
		StartDate:            time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	}

	first, err := s.service.PreviewSchedule(s.GetContext(), req)
	s.NoError(err)
	second, err := s.service.PreviewSchedule(s.GetContext(), req)
	s.NoError(err)

	s.True(decimal.NewFromInt(90000).Equal(first.DiscountedTotal))
	s.Equal(first.Installments, second.Installments)

	// Nothing was persisted.
	plans, err := s.GetStores().PlanRepo.ListPlans(s.GetContext(), &installment.PlanFilter{})
	s.NoError(err)
	s.Empty(plans)
}

func (s *PlanServiceSuite) mustGetPlan(id string) *installment.Plan {
	plan, err := s.GetStores().PlanRepo.GetPlan(s.GetContext(), id)
	s.Require().NoError(err)
	return plan
}

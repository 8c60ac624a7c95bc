package service

import (
	"testing"
	"time"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/domain/installment"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/testutil"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type FeeStructureServiceSuite struct {
	testutil.BaseServiceTestSuite
	service FeeStructureService
}

func TestFeeStructureService(t *testing.T) {
	suite.Run(t, new(FeeStructureServiceSuite))
}

func (s *FeeStructureServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewFeeStructureService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               stores.DB,
		FeeStructureRepo: stores.FeeStructureRepo,
		AddonRepo:        stores.AddonRepo,
		PlanRepo:         stores.PlanRepo,
		PaymentRepo:      stores.PaymentRepo,
		Directory:        stores.Directory,
	})
}

func (s *FeeStructureServiceSuite) createRequest() *dto.CreateFeeStructureRequest {
	return &dto.CreateFeeStructureRequest{
		Name: "BTech 2024",
		Categories: []dto.FeeCategoryRequest{
			{Name: types.FeeCategoryTuition, Amount: decimal.NewFromInt(100000)},
			{Name: types.FeeCategoryLibrary, Amount: decimal.NewFromInt(20000)},
			{Name: types.FeeCategoryLab, Amount: decimal.NewFromInt(30000)},
		},
		ApplicablePrograms: []string{"BTech"},
		ApplicableYears:    []string{"2024"},
	}
}

func (s *FeeStructureServiceSuite) TestCreate_RecomputesBaseAmount() {
	resp, err := s.service.Create(s.GetContext(), s.createRequest())
	s.NoError(err)

	s.True(decimal.NewFromInt(150000).Equal(resp.BaseAmount))
	s.True(resp.Active)

	for _, c := range resp.Categories {
		switch c.Name {
		case types.FeeCategoryTuition:
			s.True(decimal.RequireFromString("66.67").Equal(c.PercentageOfBase),
				"tuition percentage %s", c.PercentageOfBase)
		case types.FeeCategoryLibrary:
			s.True(decimal.RequireFromString("13.33").Equal(c.PercentageOfBase))
		case types.FeeCategoryLab:
			s.True(decimal.NewFromInt(20).Equal(c.PercentageOfBase))
		}
	}
}

func (s *FeeStructureServiceSuite) TestCreate_Validation() {
	req := s.createRequest()
	req.Categories = nil
	_, err := s.service.Create(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.createRequest()
	req.Categories = append(req.Categories,
		dto.FeeCategoryRequest{Name: types.FeeCategoryTuition, Amount: decimal.NewFromInt(1)})
	_, err = s.service.Create(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.createRequest()
	req.Categories[0].Amount = decimal.NewFromInt(-1)
	_, err = s.service.Create(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *FeeStructureServiceSuite) TestUpdate_PartialAndRecompute() {
	created, err := s.service.Create(s.GetContext(), s.createRequest())
	s.NoError(err)

	name := "BTech 2024 revised"
	resp, err := s.service.Update(s.GetContext(), created.ID, &dto.UpdateFeeStructureRequest{
		Name: &name,
		Categories: []dto.FeeCategoryRequest{
			{Name: types.FeeCategoryTuition, Amount: decimal.NewFromInt(120000)},
			{Name: types.FeeCategoryLibrary, Amount: decimal.NewFromInt(20000)},
		},
	})
	s.NoError(err)

	s.Equal("BTech 2024 revised", resp.Name)
	s.True(decimal.NewFromInt(140000).Equal(resp.BaseAmount))
	s.Len(resp.Categories, 2)
	// Untouched fields survive a partial update.
	s.Equal([]string{"BTech"}, resp.ApplicablePrograms)
}

func (s *FeeStructureServiceSuite) TestDelete_NoPlans() {
	created, err := s.service.Create(s.GetContext(), s.createRequest())
	s.NoError(err)

	s.NoError(s.service.Delete(s.GetContext(), created.ID))

	_, err = s.service.Get(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *FeeStructureServiceSuite) TestDelete_ArchivesWhenReferencedByPlans() {
	created, err := s.service.Create(s.GetContext(), s.createRequest())
	s.NoError(err)

	plan := &installment.Plan{
		ID:                   "plan_1",
		StudentID:            "std_1",
		FeeStructureID:       created.ID,
		TotalAmount:          decimal.NewFromInt(150000),
		NumberOfInstallments: 1,
		StartDate:            time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		DueDateType:          types.DueDateTypeOneTime,
		PlanStatus:           types.PlanStatusActive,
		Version:              1,
		BaseModel:            types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.CreatePlan(s.GetContext(), plan))

	s.NoError(s.service.Delete(s.GetContext(), created.ID))

	// Still resolvable for historical plans, but no longer active.
	resp, err := s.service.Get(s.GetContext(), created.ID)
	s.NoError(err)
	s.False(resp.Active)
}

func (s *FeeStructureServiceSuite) TestList_ActiveOnlyAndProgramFilter() {
	_, err := s.service.Create(s.GetContext(), s.createRequest())
	s.NoError(err)

	other := s.createRequest()
	other.Name = "MBA 2024"
	other.ApplicablePrograms = []string{"MBA"}
	created, err := s.service.Create(s.GetContext(), other)
	s.NoError(err)
	s.NoError(s.GetStores().FeeStructureRepo.Archive(s.GetContext(), created.ID))

	resp, err := s.service.List(s.GetContext(), &feestructure.Filter{ActiveOnly: true})
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal("BTech 2024", resp.Items[0].Name)

	program := "MBA"
	resp, err = s.service.List(s.GetContext(), &feestructure.Filter{Program: &program})
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal("MBA 2024", resp.Items[0].Name)
}

func (s *FeeStructureServiceSuite) TestDuplicate() {
	created, err := s.service.Create(s.GetContext(), s.createRequest())
	s.NoError(err)

	clone, err := s.service.Duplicate(s.GetContext(), created.ID, "BTech 2025")
	s.NoError(err)

	s.NotEqual(created.ID, clone.ID)
	s.Equal("BTech 2025", clone.Name)
	s.True(created.BaseAmount.Equal(clone.BaseAmount))
	s.Equal(created.Categories, clone.Categories)

	// The clone is independent of its source.
	s.NoError(s.service.Delete(s.GetContext(), created.ID))
	_, err = s.service.Get(s.GetContext(), clone.ID)
	s.NoError(err)
}

func (s *FeeStructureServiceSuite) TestDuplicate_RequiresName() {
	created, err := s.service.Create(s.GetContext(), s.createRequest())
	s.NoError(err)

	_, err = s.service.Duplicate(s.GetContext(), created.ID, "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

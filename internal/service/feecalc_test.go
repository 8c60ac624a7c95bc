package service

import (
	"testing"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/addon"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	"github.com/feeflow/feeflow/internal/domain/student"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/testutil"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type FeeCalculationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   FeeCalculationService
	structure *feestructure.FeeStructure
}

func TestFeeCalculationService(t *testing.T) {
	suite.Run(t, new(FeeCalculationServiceSuite))
}

func (s *FeeCalculationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewFeeCalculationService(ServiceParams{
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
		ID:   "fs_default",
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
		ID: "addon_default",
		HostelTiers: []addon.Tier{
			{Name: "standard", Amount: decimal.NewFromInt(40000), IsDefault: true},
			{Name: "premium", Amount: decimal.NewFromInt(60000)},
		},
		TransportTiers: []addon.Tier{
			{Name: "zone-a", Amount: decimal.NewFromInt(15000), IsDefault: true},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *FeeCalculationServiceSuite) registerStudent(profile *student.FeeProfile) {
	s.GetStores().Directory.Register(profile)
}

func (s *FeeCalculationServiceSuite) TestComputeForStudent_Regular() {
	s.registerStudent(&student.FeeProfile{
		StudentID: "std_1",
		Program:   "BTech",
		Category:  types.StudentCategoryRegular,
	})

	resp, err := s.service.ComputeForStudent(s.GetContext(), &dto.ComputeFeeRequest{
		StudentID:      "std_1",
		FeeStructureID: s.structure.ID,
	})
	s.NoError(err)

	b := resp.Breakdown
	s.True(decimal.NewFromInt(100000).Equal(b.BaseFees[types.FeeCategoryTuition]))
	s.Empty(b.Discounts)
	s.Nil(b.AdditionalFees.Hostel)
	s.Nil(b.AdditionalFees.Transport)
	s.True(decimal.NewFromInt(150000).Equal(b.Total), "total %s", b.Total)
}

func (s *FeeCalculationServiceSuite) TestComputeForStudent_ScholarshipMultiplierAndDiscount() {
	s.registerStudent(&student.FeeProfile{
		StudentID:             "std_2",
		Program:               "BTech",
		Category:              types.StudentCategoryScholarship,
		ScholarshipType:       "merit",
		ScholarshipPercentage: decimal.NewFromInt(25),
	})

	resp, err := s.service.ComputeForStudent(s.GetContext(), &dto.ComputeFeeRequest{
		StudentID:      "std_2",
		FeeStructureID: s.structure.ID,
	})
	s.NoError(err)

	b := resp.Breakdown
	// Category multiplier adjusts the tuition line, then the scholarship
	// percentage applies to the adjusted tuition.
	s.True(decimal.NewFromInt(80000).Equal(b.BaseFees[types.FeeCategoryTuition]),
		"tuition %s", b.BaseFees[types.FeeCategoryTuition])
	s.True(decimal.NewFromInt(20000).Equal(b.Discounts[types.DiscountScholarship]),
		"discount %s", b.Discounts[types.DiscountScholarship])
	s.True(decimal.NewFromInt(110000).Equal(b.Total), "total %s", b.Total)
}

func (s *FeeCalculationServiceSuite) TestComputeForStudent_ManagementQuota() {
	s.registerStudent(&student.FeeProfile{
		StudentID: "std_3",
		Program:   "BTech",
		Category:  types.StudentCategoryManagementQuota,
	})

	resp, err := s.service.ComputeForStudent(s.GetContext(), &dto.ComputeFeeRequest{
		StudentID:      "std_3",
		FeeStructureID: s.structure.ID,
	})
	s.NoError(err)
	s.True(decimal.NewFromInt(130000).Equal(resp.Breakdown.BaseFees[types.FeeCategoryTuition]))
}

func (s *FeeCalculationServiceSuite) TestComputeForStudent_AddonsAndSumInvariant() {
	stores := s.GetStores()
	s.NoError(stores.AddonRepo.Update(s.GetContext(), &addon.Catalog{
		ID: "addon_full",
		HostelTiers: []addon.Tier{
			{Name: "standard", Amount: decimal.NewFromInt(40000), IsDefault: true},
		},
		TransportTiers: []addon.Tier{
			{Name: "zone-a", Amount: decimal.NewFromInt(15000), IsDefault: true},
		},
		OneTimeCharges: []addon.Charge{
			{Name: "admission", Amount: decimal.NewFromInt(5000)},
			{Name: "caution_deposit", Amount: decimal.NewFromInt(10000)},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))

	s.registerStudent(&student.FeeProfile{
		StudentID:             "std_4",
		Program:               "BTech",
		Category:              types.StudentCategoryScholarship,
		HostelRequired:        true,
		TransportRequired:     true,
		ScholarshipType:       "merit",
		ScholarshipPercentage: decimal.NewFromInt(10),
	})

	resp, err := s.service.ComputeForStudent(s.GetContext(), &dto.ComputeFeeRequest{
		StudentID:      "std_4",
		FeeStructureID: s.structure.ID,
	})
	s.NoError(err)

	b := resp.Breakdown
	s.NotNil(b.AdditionalFees.Hostel)
	s.True(decimal.NewFromInt(40000).Equal(*b.AdditionalFees.Hostel))
	s.NotNil(b.AdditionalFees.Transport)
	s.True(decimal.NewFromInt(15000).Equal(*b.AdditionalFees.Transport))
	s.Len(b.AdditionalFees.OneTimeFees, 2)

	want := b.SumBase().Add(b.SumAdditional()).Sub(b.SumDiscounts())
	s.True(want.Equal(b.Total), "total %s want %s", b.Total, want)
}

func (s *FeeCalculationServiceSuite) TestPreview_Deterministic() {
	req := &dto.PreviewFeeRequest{
		FeeStructureID: s.structure.ID,
		Profile: student.FeeProfile{
			StudentID:             "std_preview",
			Program:               "BTech",
			Category:              types.StudentCategoryScholarship,
			ScholarshipType:       "merit",
			ScholarshipPercentage: decimal.NewFromInt(25),
		},
	}

	first, err := s.service.Preview(s.GetContext(), req)
	s.NoError(err)
	second, err := s.service.Preview(s.GetContext(), req)
	s.NoError(err)

	s.True(first.Breakdown.Total.Equal(second.Breakdown.Total))
	s.Equal(first.Breakdown.BaseFees, second.Breakdown.BaseFees)
}

func (s *FeeCalculationServiceSuite) TestPreview_ScholarshipMonotonic() {
	totalAt := func(pct int64) decimal.Decimal {
		resp, err := s.service.Preview(s.GetContext(), &dto.PreviewFeeRequest{
			FeeStructureID: s.structure.ID,
			Profile: student.FeeProfile{
				StudentID:             "std_mono",
				Program:               "BTech",
				Category:              types.StudentCategoryRegular,
				ScholarshipType:       "merit",
				ScholarshipPercentage: decimal.NewFromInt(pct),
			},
		})
		s.NoError(err)
		return resp.Breakdown.Total
	}

	s.True(totalAt(50).LessThan(totalAt(25)))
	s.True(totalAt(25).LessThan(totalAt(10)))
	s.True(totalAt(100).LessThanOrEqual(totalAt(99)))
}

func (s *FeeCalculationServiceSuite) TestPreview_NoDiscountEntryForZeroPercent() {
	resp, err := s.service.Preview(s.GetContext(), &dto.PreviewFeeRequest{
		FeeStructureID: s.structure.ID,
		Profile: student.FeeProfile{
			StudentID:             "std_zero",
			Program:               "BTech",
			Category:              types.StudentCategoryRegular,
			ScholarshipType:       "merit",
			ScholarshipPercentage: decimal.Zero,
		},
	})
	s.NoError(err)
	s.Empty(resp.Breakdown.Discounts)
}

func (s *FeeCalculationServiceSuite) TestPreview_NoDiscountEntryWithoutScholarshipType() {
	resp, err := s.service.Preview(s.GetContext(), &dto.PreviewFeeRequest{
		FeeStructureID: s.structure.ID,
		Profile: student.FeeProfile{
			StudentID:             "std_notype",
			Program:               "BTech",
			Category:              types.StudentCategoryRegular,
			ScholarshipPercentage: decimal.NewFromInt(25),
		},
	})
	s.NoError(err)
	s.Empty(resp.Breakdown.Discounts)
}

func (s *FeeCalculationServiceSuite) TestPreview_UnknownCategory() {
	_, err := s.service.Preview(s.GetContext(), &dto.PreviewFeeRequest{
		FeeStructureID: s.structure.ID,
		Profile: student.FeeProfile{
			StudentID: "std_bad",
			Program:   "BTech",
			Category:  "ALUMNI",
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *FeeCalculationServiceSuite) TestPreview_ScholarshipPercentageOutOfRange() {
	_, err := s.service.Preview(s.GetContext(), &dto.PreviewFeeRequest{
		FeeStructureID: s.structure.ID,
		Profile: student.FeeProfile{
			StudentID:             "std_bad_pct",
			Program:               "BTech",
			Category:              types.StudentCategoryRegular,
			ScholarshipType:       "merit",
			ScholarshipPercentage: decimal.NewFromInt(101),
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *FeeCalculationServiceSuite) TestComputeForStudent_InactiveStructure() {
	s.NoError(s.GetStores().FeeStructureRepo.Archive(s.GetContext(), s.structure.ID))

	s.registerStudent(&student.FeeProfile{
		StudentID: "std_5",
		Program:   "BTech",
		Category:  types.StudentCategoryRegular,
	})

	_, err := s.service.ComputeForStudent(s.GetContext(), &dto.ComputeFeeRequest{
		StudentID:      "std_5",
		FeeStructureID: s.structure.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *FeeCalculationServiceSuite) TestComputeForStudent_UnknownStudent() {
	_, err := s.service.ComputeForStudent(s.GetContext(), &dto.ComputeFeeRequest{
		StudentID:      "std_missing",
		FeeStructureID: s.structure.ID,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *FeeCalculationServiceSuite) TestComputeForStudent_HostelWithoutTiers() {
	s.NoError(s.GetStores().AddonRepo.Update(s.GetContext(), &addon.Catalog{
		ID:        "addon_empty",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))

	s.registerStudent(&student.FeeProfile{
		StudentID:      "std_6",
		Program:        "BTech",
		Category:       types.StudentCategoryRegular,
		HostelRequired: true,
	})

	_, err := s.service.ComputeForStudent(s.GetContext(), &dto.ComputeFeeRequest{
		StudentID:      "std_6",
		FeeStructureID: s.structure.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvariantViolation(err))
}

package service

import (
	"testing"

	"github.com/feeflow/feeflow/internal/api/dto"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AddonCatalogServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AddonCatalogService
}

func TestAddonCatalogService(t *testing.T) {
	suite.Run(t, new(AddonCatalogServiceSuite))
}

func (s *AddonCatalogServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewAddonCatalogService(ServiceParams{
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

func (s *AddonCatalogServiceSuite) TestGet_Unconfigured() {
	_, err := s.service.Get(s.GetContext())
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AddonCatalogServiceSuite) TestUpdateAndGet() {
	updated, err := s.service.Update(s.GetContext(), &dto.UpdateAddonCatalogRequest{
		HostelTiers: []dto.TierRequest{
			{Name: "standard", Amount: decimal.NewFromInt(40000), IsDefault: true},
			{Name: "premium", Amount: decimal.NewFromInt(60000)},
		},
		TransportTiers: []dto.TierRequest{
			{Name: "zone-a", Amount: decimal.NewFromInt(15000), IsDefault: true},
		},
		OneTimeCharges: []dto.ChargeRequest{
			{Name: "admission", Amount: decimal.NewFromInt(5000)},
		},
	})
	s.NoError(err)
	s.NotEmpty(updated.ID)

	resp, err := s.service.Get(s.GetContext())
	s.NoError(err)
	s.Len(resp.HostelTiers, 2)
	s.Len(resp.TransportTiers, 1)
	s.Len(resp.OneTimeCharges, 1)
	s.True(decimal.NewFromInt(40000).Equal(resp.HostelTiers[0].Amount))
}

func (s *AddonCatalogServiceSuite) TestUpdate_Validation() {
	_, err := s.service.Update(s.GetContext(), &dto.UpdateAddonCatalogRequest{
		HostelTiers: []dto.TierRequest{
			{Name: "standard", Amount: decimal.NewFromInt(-1)},
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

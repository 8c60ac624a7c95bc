package service

import (
	"context"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
)

// FeeStructureService manages the fee structure catalog.
type FeeStructureService interface {
	Create(ctx context.Context, req *dto.CreateFeeStructureRequest) (*dto.FeeStructureResponse, error)
	Get(ctx context.Context, id string) (*dto.FeeStructureResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateFeeStructureRequest) (*dto.FeeStructureResponse, error)
	// Delete removes a structure, or archives it instead when installment
	// plans still reference it so historical plans keep resolving.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *feestructure.Filter) (*dto.ListFeeStructuresResponse, error)
	// Duplicate clones an existing structure under a new name as a draft for
	// the next academic year.
	Duplicate(ctx context.Context, id string, name string) (*dto.FeeStructureResponse, error)
}

type feeStructureService struct {
	ServiceParams
}

func NewFeeStructureService(params ServiceParams) FeeStructureService {
	return &feeStructureService{
		ServiceParams: params,
	}
}

func (s *feeStructureService) Create(ctx context.Context, req *dto.CreateFeeStructureRequest) (*dto.FeeStructureResponse, error) {
	structure := req.ToFeeStructure(ctx)
	if err := structure.Validate(); err != nil {
		return nil, err
	}

	if err := s.FeeStructureRepo.Create(ctx, structure); err != nil {
		return nil, err
	}

	s.Logger.Infow("created fee structure",
		"fee_structure_id", structure.ID,
		"name", structure.Name,
		"base_amount", structure.BaseAmount)

	return dto.NewFeeStructureResponse(structure), nil
}

func (s *feeStructureService) Get(ctx context.Context, id string) (*dto.FeeStructureResponse, error) {
	structure, err := s.FeeStructureRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewFeeStructureResponse(structure), nil
}

func (s *feeStructureService) Update(ctx context.Context, id string, req *dto.UpdateFeeStructureRequest) (*dto.FeeStructureResponse, error) {
	structure, err := s.FeeStructureRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		structure.Name = *req.Name
	}
	if req.Description != nil {
		structure.Description = *req.Description
	}
	if req.Categories != nil {
		categories := make([]feestructure.FeeCategory, len(req.Categories))
		for i, c := range req.Categories {
			categories[i] = feestructure.FeeCategory{
				Name:   c.Name,
				Amount: c.Amount,
			}
		}
		structure.Categories = categories
	}
	if req.ApplicablePrograms != nil {
		structure.ApplicablePrograms = req.ApplicablePrograms
	}
	if req.ApplicableYears != nil {
		structure.ApplicableYears = req.ApplicableYears
	}

	structure.RecomputeBaseAmount()
	if err := structure.Validate(); err != nil {
		return nil, err
	}
	structure.UpdatedBy = types.GetUserID(ctx)

	if err := s.FeeStructureRepo.Update(ctx, structure); err != nil {
		return nil, err
	}

	return dto.NewFeeStructureResponse(structure), nil
}

func (s *feeStructureService) Delete(ctx context.Context, id string) error {
	if _, err := s.FeeStructureRepo.Get(ctx, id); err != nil {
		return err
	}

	planCount, err := s.PlanRepo.CountByFeeStructure(ctx, id)
	if err != nil {
		return err
	}
	if planCount > 0 {
		s.Logger.Infow("archiving fee structure still referenced by plans",
			"fee_structure_id", id,
			"plan_count", planCount)
		return s.FeeStructureRepo.Archive(ctx, id)
	}

	return s.FeeStructureRepo.Delete(ctx, id)
}

func (s *feeStructureService) List(ctx context.Context, filter *feestructure.Filter) (*dto.ListFeeStructuresResponse, error) {
	if filter == nil {
		filter = &feestructure.Filter{}
	}

	structures, err := s.FeeStructureRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.FeeStructureRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.FeeStructureResponse, len(structures))
	for i, structure := range structures {
		items[i] = dto.NewFeeStructureResponse(structure)
	}

	return &dto.ListFeeStructuresResponse{
		Items: items,
		Total: count,
	}, nil
}

func (s *feeStructureService) Duplicate(ctx context.Context, id string, name string) (*dto.FeeStructureResponse, error) {
	if name == "" {
		return nil, ierr.NewError("duplicate name is required").
			WithHint("A name for the duplicated structure is required").
			Mark(ierr.ErrValidation)
	}

	source, err := s.FeeStructureRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	clone := &feestructure.FeeStructure{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE_STRUCTURE),
		Name:               name,
		Description:        source.Description,
		Categories:         append([]feestructure.FeeCategory{}, source.Categories...),
		ApplicablePrograms: append([]string{}, source.ApplicablePrograms...),
		ApplicableYears:    append([]string{}, source.ApplicableYears...),
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	clone.RecomputeBaseAmount()

	if err := s.FeeStructureRepo.Create(ctx, clone); err != nil {
		return nil, err
	}

	s.Logger.Infow("duplicated fee structure",
		"source_id", source.ID,
		"fee_structure_id", clone.ID,
		"name", clone.Name)

	return dto.NewFeeStructureResponse(clone), nil
}

package v1

import (
	"net/http"

	"github.com/feeflow/feeflow/internal/api/dto"
	"github.com/feeflow/feeflow/internal/domain/feestructure"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/service"
	"github.com/gin-gonic/gin"
)

type FeeStructureHandler struct {
	service service.FeeStructureService
	log     *logger.Logger
}

func NewFeeStructureHandler(service service.FeeStructureService, log *logger.Logger) *FeeStructureHandler {
	return &FeeStructureHandler{service: service, log: log}
}

func (h *FeeStructureHandler) CreateFeeStructure(c *gin.Context) {
	var req dto.CreateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to create fee structure", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *FeeStructureHandler) GetFeeStructure(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Fee structure ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to get fee structure", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FeeStructureHandler) UpdateFeeStructure(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Fee structure ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Errorw("failed to update fee structure", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FeeStructureHandler) DeleteFeeStructure(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Fee structure ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.log.Errorw("failed to delete fee structure", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "fee structure deleted"})
}

func (h *FeeStructureHandler) ListFeeStructures(c *gin.Context) {
	var filter feestructure.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		h.log.Errorw("failed to list fee structures", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FeeStructureHandler) DuplicateFeeStructure(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Fee structure ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("A name for the duplicated structure is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Duplicate(c.Request.Context(), id, req.Name)
	if err != nil {
		h.log.Errorw("failed to duplicate fee structure", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

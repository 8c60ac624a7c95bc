package v1

import (
	"net/http"

	"github.com/feeflow/feeflow/internal/api/dto"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/service"
	"github.com/gin-gonic/gin"
)

type FeeHandler struct {
	service service.FeeCalculationService
	log     *logger.Logger
}

func NewFeeHandler(service service.FeeCalculationService, log *logger.Logger) *FeeHandler {
	return &FeeHandler{service: service, log: log}
}

func (h *FeeHandler) ComputeFees(c *gin.Context) {
	var req dto.ComputeFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ComputeForStudent(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to compute fees", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FeeHandler) PreviewFees(c *gin.Context) {
	var req dto.PreviewFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Preview(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to preview fees", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

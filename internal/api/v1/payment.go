package v1

import (
	"net/http"

	"github.com/feeflow/feeflow/internal/api/dto"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/service"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service service.LedgerService
	log     *logger.Logger
}

func NewPaymentHandler(service service.LedgerService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Record(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to record payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to get payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var filter types.PaymentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		h.log.Errorw("failed to list payments", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("The payment version is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Verify(c.Request.Context(), id, req.Version)
	if err != nil {
		h.log.Errorw("failed to verify payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) RejectPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("The payment version is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), id, req.Version)
	if err != nil {
		h.log.Errorw("failed to reject payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetCollectionStats(c *gin.Context) {
	planID := c.Param("id")
	if planID == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Plan ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	asOf, err := asOfFromQuery(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.GetCollectionStats(c.Request.Context(), planID, asOf)
	if err != nil {
		h.log.Errorw("failed to get collection stats", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

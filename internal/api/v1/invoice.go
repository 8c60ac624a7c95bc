package v1

import (
	"net/http"

	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/service"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, log: log}
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
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

	resp, err := h.service.Generate(c.Request.Context(), planID, asOf)
	if err != nil {
		h.log.Errorw("failed to generate invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

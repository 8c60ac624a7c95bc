package v1

import (
	"net/http"

	"github.com/feeflow/feeflow/internal/api/dto"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/service"
	"github.com/gin-gonic/gin"
)

type AddonHandler struct {
	service service.AddonCatalogService
	log     *logger.Logger
}

func NewAddonHandler(service service.AddonCatalogService, log *logger.Logger) *AddonHandler {
	return &AddonHandler{service: service, log: log}
}

func (h *AddonHandler) GetAddonCatalog(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.log.Errorw("failed to get addon catalog", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AddonHandler) UpdateAddonCatalog(c *gin.Context) {
	var req dto.UpdateAddonCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to update addon catalog", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

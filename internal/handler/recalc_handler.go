package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexterminus/terminus-api/internal/models"
	"github.com/lexterminus/terminus-api/pkg/response"
)

type recalcService interface {
	Run(ctx context.Context) (*models.RecalcResult, error)
}

// RecalcHandler exposes the on-demand recalculation pass.
type RecalcHandler struct {
	service recalcService
}

// NewRecalcHandler builds a new handler.
func NewRecalcHandler(service recalcService) *RecalcHandler {
	return &RecalcHandler{service: service}
}

// Run godoc
// @Summary Recalculate every due date against the current holiday calendar
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /recalculate [post]
func (h *RecalcHandler) Run(c *gin.Context) {
	result, err := h.service.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

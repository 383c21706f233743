package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexterminus/terminus-api/internal/dto"
	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
	"github.com/lexterminus/terminus-api/pkg/response"
)

type settingsService interface {
	Describe(ctx context.Context) (*dto.SettingsResponse, error)
	Save(ctx context.Context, req dto.UpdateSettingsRequest, triggerRecalc bool) (*models.Settings, *models.RecalcResult, error)
	Reset(ctx context.Context) (*models.Settings, *models.RecalcResult, error)
}

// SettingsHandler exposes the settings record.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Get the settings record
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Describe(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Replace the settings record
// @Tags Settings
// @Accept json
// @Produce json
// @Param recalc query bool false "Recalculate due dates when the holiday calendar changed"
// @Param payload body dto.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	triggerRecalc := c.DefaultQuery("recalc", "true") != "false"
	settings, recalc, err := h.service.Save(c.Request.Context(), req, triggerRecalc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil, recalcMeta(recalc))
}

// Reset godoc
// @Summary Restore the built-in settings defaults
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/reset [post]
func (h *SettingsHandler) Reset(c *gin.Context) {
	settings, recalc, err := h.service.Reset(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil, recalcMeta(recalc))
}

func recalcMeta(result *models.RecalcResult) map[string]interface{} {
	if result == nil {
		return nil
	}
	return map[string]interface{}{"recalculation": result}
}

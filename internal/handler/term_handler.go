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

type termService interface {
	List(ctx context.Context) ([]models.Term, error)
	Get(ctx context.Context, id string) (*models.Term, error)
	Create(ctx context.Context, req dto.SaveTermRequest) (*models.Term, error)
	Update(ctx context.Context, id string, req dto.SaveTermRequest) (*models.Term, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context, req dto.ClearTermsRequest) error
	ListTypes() []dto.TermTypeItem
}

// TermHandler exposes term lifecycle endpoints.
type TermHandler struct {
	service termService
}

// NewTermHandler builds a new handler.
func NewTermHandler(service termService) *TermHandler {
	return &TermHandler{service: service}
}

// List godoc
// @Summary List all terms
// @Tags Terms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /terms [get]
func (h *TermHandler) List(c *gin.Context) {
	terms, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// Get godoc
// @Summary Get a term by id
// @Tags Terms
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [get]
func (h *TermHandler) Get(c *gin.Context) {
	term, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// Create godoc
// @Summary Register a term
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body dto.SaveTermRequest true "Term payload"
// @Success 201 {object} response.Envelope
// @Router /terms [post]
func (h *TermHandler) Create(c *gin.Context) {
	var req dto.SaveTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid term payload"))
		return
	}
	term, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, term)
}

// Update godoc
// @Summary Replace a term
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body dto.SaveTermRequest true "Term payload"
// @Success 200 {object} response.Envelope
// @Router /terms/{id} [put]
func (h *TermHandler) Update(c *gin.Context) {
	var req dto.SaveTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid term payload"))
		return
	}
	term, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, term, nil)
}

// Delete godoc
// @Summary Delete a term
// @Tags Terms
// @Param id path string true "Term ID"
// @Success 204
// @Router /terms/{id} [delete]
func (h *TermHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Clear godoc
// @Summary Delete every term
// @Tags Terms
// @Accept json
// @Param payload body dto.ClearTermsRequest true "Confirmation payload"
// @Success 204
// @Router /terms/clear [post]
func (h *TermHandler) Clear(c *gin.Context) {
	var req dto.ClearTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid clear payload"))
		return
	}
	if err := h.service.Clear(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTypes godoc
// @Summary List the term-type catalog
// @Tags Terms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /term-types [get]
func (h *TermHandler) ListTypes(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListTypes(), nil)
}

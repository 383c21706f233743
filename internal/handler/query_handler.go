package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lexterminus/terminus-api/internal/models"
	"github.com/lexterminus/terminus-api/pkg/response"
)

type queryService interface {
	Query(ctx context.Context, params models.QueryParams) ([]models.QueryItem, *models.Pagination, error)
}

// QueryHandler exposes the term view pipeline.
type QueryHandler struct {
	service queryService
}

// NewQueryHandler builds a new handler.
func NewQueryHandler(service queryService) *QueryHandler {
	return &QueryHandler{service: service}
}

// Query godoc
// @Summary Query terms through a view
// @Tags Terms
// @Produce json
// @Param view query string false "View: chronological or due_soon"
// @Param search query string false "Free-text filter (chronological view)"
// @Param sort query string false "Sort key (chronological view)"
// @Param status query string false "Status filter (due_soon view)"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /terms/query [get]
func (h *QueryHandler) Query(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	params := models.QueryParams{
		View:   models.ViewKind(c.Query("view")),
		Search: c.Query("search"),
		Sort:   models.SortKey(c.Query("sort")),
		Status: models.StatusFilter(c.Query("status")),
		Page:   page,
	}
	items, pagination, err := h.service.Query(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

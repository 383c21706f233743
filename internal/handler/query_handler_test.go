package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexterminus/terminus-api/internal/models"
)

type queryServiceMock struct {
	params models.QueryParams
}

func (m *queryServiceMock) Query(ctx context.Context, params models.QueryParams) ([]models.QueryItem, *models.Pagination, error) {
	m.params = params
	items := []models.QueryItem{{
		Term:      models.Term{ID: "t1", CaseNumber: "2025-001", DueDate: "2025-01-07"},
		Remaining: &models.DaysRemaining{Days: 1},
		Status:    models.StatusLabelUrgent,
	}}
	return items, &models.Pagination{Page: params.Page, PageSize: 25, TotalCount: 1}, nil
}

func TestQueryHandlerPassesParams(t *testing.T) {
	mock := &queryServiceMock{}
	handler := NewQueryHandler(mock)
	c, w := testContext(t, http.MethodGet, "/terms/query?view=due_soon&status=urgent&page=2", nil)

	handler.Query(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ViewDueSoon, mock.params.View)
	assert.Equal(t, models.StatusFilterUrgent, mock.params.Status)
	assert.Equal(t, 2, mock.params.Page)
	assert.Contains(t, w.Body.String(), `"pagination"`)
	assert.Contains(t, w.Body.String(), `"status":"urgent"`)
}

func TestQueryHandlerDefaultsPage(t *testing.T) {
	mock := &queryServiceMock{}
	handler := NewQueryHandler(mock)
	c, w := testContext(t, http.MethodGet, "/terms/query?search=juzgado", nil)

	handler.Query(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mock.params.Page)
	assert.Equal(t, "juzgado", mock.params.Search)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexterminus/terminus-api/internal/models"
)

type queryListerStub struct {
	terms []models.Term
}

func (s *queryListerStub) List(ctx context.Context) ([]models.Term, error) {
	snapshot := make([]models.Term, len(s.terms))
	copy(snapshot, s.terms)
	return snapshot, nil
}

func queryFixture() []models.Term {
	mod := func(day int) time.Time {
		return time.Date(2025, 1, day, 10, 0, 0, 0, time.UTC)
	}
	return []models.Term{
		{ID: "t1", CaseNumber: "2025-001", Court: "Juzgado Primero", TermTypeLabel: "Recurso de Reposición", DueDate: "2025-01-07", LastModified: mod(1)},
		{ID: "t2", CaseNumber: "2025-002", Court: "Tribunal Superior", TermTypeLabel: "Alegatos de Conclusión", DueDate: "2025-01-20", LastModified: mod(2)},
		{ID: "t3", CaseNumber: "2024-099", Court: "Juzgado Segundo", TermTypeLabel: "Ejecutoria", DueDate: "2025-01-03", Notes: "revisar expediente", LastModified: mod(3)},
		{ID: "t4", CaseNumber: "2025-004", Court: "Consejo de Estado", TermTypeLabel: "Contestación de Demanda", DueDate: "", LastModified: mod(4)},
	}
}

func newQueryService(terms []models.Term, settings *models.Settings) *QueryService {
	if settings == nil {
		settings = &models.Settings{WarningThresholdDays: 5, UrgentThresholdDays: 2, PageSize: 25}
	}
	svc := NewQueryService(&queryListerStub{terms: terms}, &settingsLoaderStub{settings: settings}, NewCalendarService(nil), nil, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC) // Monday
	}
	return svc
}

func TestQueryChronologicalDefaultsToNewestFirst(t *testing.T) {
	svc := newQueryService(queryFixture(), nil)

	items, pagination, err := svc.Query(context.Background(), models.QueryParams{})
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "t4", items[0].Term.ID)
	assert.Equal(t, "t1", items[3].Term.ID)
	assert.Equal(t, 4, pagination.TotalCount)
	assert.Equal(t, 25, pagination.PageSize)
}

func TestQueryChronologicalSearchSpansFields(t *testing.T) {
	svc := newQueryService(queryFixture(), nil)

	items, _, err := svc.Query(context.Background(), models.QueryParams{Search: "expediente"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "t3", items[0].Term.ID)

	items, _, err = svc.Query(context.Background(), models.QueryParams{Search: "JUZGADO"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, _, err = svc.Query(context.Background(), models.QueryParams{Search: "no match anywhere"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestQueryChronologicalSortByCaseNumber(t *testing.T) {
	svc := newQueryService(queryFixture(), nil)

	items, _, err := svc.Query(context.Background(), models.QueryParams{Sort: models.SortCaseNumberAsc})
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "2024-099", items[0].Term.CaseNumber)
	assert.Equal(t, "2025-004", items[3].Term.CaseNumber)
}

func TestQueryDueSoonExcludesTermsWithoutDueDate(t *testing.T) {
	svc := newQueryService(queryFixture(), nil)

	items, _, err := svc.Query(context.Background(), models.QueryParams{
		View:   models.ViewDueSoon,
		Status: models.StatusFilterAll,
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	// Always due date ascending.
	assert.Equal(t, "t3", items[0].Term.ID)
	assert.Equal(t, "t1", items[1].Term.ID)
	assert.Equal(t, "t2", items[2].Term.ID)
}

func TestQueryDueSoonStatusFilters(t *testing.T) {
	svc := newQueryService(queryFixture(), nil)

	// t3 due 2025-01-03 is past; t1 due 2025-01-07 is one business day out
	// (urgent); t2 due 2025-01-20 is ten business days out (normal).
	items, _, err := svc.Query(context.Background(), models.QueryParams{
		View:   models.ViewDueSoon,
		Status: models.StatusFilterPastDue,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "t3", items[0].Term.ID)
	assert.Equal(t, models.StatusLabelUrgent, items[0].Status)

	items, _, err = svc.Query(context.Background(), models.QueryParams{
		View:   models.ViewDueSoon,
		Status: models.StatusFilterUrgent,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "t3", items[0].Term.ID)
	assert.Equal(t, "t1", items[1].Term.ID)

	items, _, err = svc.Query(context.Background(), models.QueryParams{
		View:   models.ViewDueSoon,
		Status: models.StatusFilterPending,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "t1", items[0].Term.ID)
	assert.Equal(t, "t2", items[1].Term.ID)
}

func TestQueryPageSizeComesFromSettings(t *testing.T) {
	terms := make([]models.Term, 0, 30)
	for i := 0; i < 30; i++ {
		terms = append(terms, models.Term{
			ID:           string(rune('a' + i%26)),
			CaseNumber:   "case",
			DueDate:      "2025-02-10",
			LastModified: time.Date(2025, 1, 1, 0, i, 0, 0, time.UTC),
		})
	}
	svc := newQueryService(terms, &models.Settings{WarningThresholdDays: 5, UrgentThresholdDays: 2, PageSize: 10})

	items, pagination, err := svc.Query(context.Background(), models.QueryParams{Page: 1})
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, 30, pagination.TotalCount)
	assert.Equal(t, 10, pagination.PageSize)

	items, pagination, err = svc.Query(context.Background(), models.QueryParams{Page: 3})
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, 3, pagination.Page)
}

func TestQueryClampsPageIntoRange(t *testing.T) {
	svc := newQueryService(queryFixture(), nil)

	items, pagination, err := svc.Query(context.Background(), models.QueryParams{Page: 99})
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, 1, pagination.Page)

	items, pagination, err = svc.Query(context.Background(), models.QueryParams{Page: -5})
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, 1, pagination.Page)
}

func TestQueryEmptyCollection(t *testing.T) {
	svc := newQueryService(nil, nil)

	items, pagination, err := svc.Query(context.Background(), models.QueryParams{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, pagination.Page)
	assert.Zero(t, pagination.TotalCount)
}

func TestDueSoonReportIncludesEverythingDatable(t *testing.T) {
	svc := newQueryService(queryFixture(), nil)

	items, err := svc.DueSoon(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "t3", items[0].Term.ID)
}

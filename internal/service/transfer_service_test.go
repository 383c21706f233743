package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
	"github.com/lexterminus/terminus-api/pkg/storage"
)

type transferRepoStub struct {
	terms    []models.Term
	upserted []models.Term
}

func (s *transferRepoStub) List(ctx context.Context) ([]models.Term, error) {
	return s.terms, nil
}

func (s *transferRepoStub) BulkUpsert(ctx context.Context, terms []models.Term) error {
	s.upserted = append(s.upserted, terms...)
	return nil
}

type dueSoonStub struct {
	items []models.QueryItem
}

func (s *dueSoonStub) DueSoon(ctx context.Context) ([]models.QueryItem, error) {
	return s.items, nil
}

func transferFixture() []models.Term {
	dueTime := "14:30"
	return []models.Term{
		{
			ID:            "t1",
			CaseNumber:    "2025-001",
			Court:         "Juzgado Primero Civil",
			TermTypeCode:  "recurso_reposicion",
			TermTypeLabel: "Recurso de Reposición",
			StartDate:     "2025-01-02",
			BusinessDays:  3,
			DueDate:       "2025-01-07",
			DueTime:       &dueTime,
			Notes:         `contiene "comillas", comas y` + "\nsaltos de línea",
			LastModified:  time.Date(2025, 1, 2, 15, 4, 5, 123000000, time.UTC),
		},
		{
			ID:            "t2",
			CaseNumber:    "2025-002",
			Court:         "Tribunal Superior",
			TermTypeCode:  "other",
			TermTypeLabel: "Otro: Audiencia",
			StartDate:     "2025-01-10",
			BusinessDays:  0,
			DueDate:       "2025-01-10",
			Notes:         "",
			LastModified:  time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestRenderCSVHeaderIsExact(t *testing.T) {
	svc := NewTransferService(&transferRepoStub{}, &dueSoonStub{}, nil, nil)

	payload, err := svc.RenderCSV(nil)
	require.NoError(t, err)
	first := strings.SplitN(string(payload), "\n", 2)[0]
	assert.Equal(t, "id,caseNumber,court,termTypeCode,termTypeLabel,startDate,businessDays,dueDate,dueTime,notes,lastModified", strings.TrimRight(first, "\r"))
}

func TestCSVRoundTripPreservesTerms(t *testing.T) {
	svc := NewTransferService(&transferRepoStub{}, &dueSoonStub{}, nil, nil)
	terms := transferFixture()

	payload, err := svc.RenderCSV(terms)
	require.NoError(t, err)

	parsed, skipped, err := svc.ParseCSV(strings.NewReader(string(payload)))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, parsed, len(terms))

	byID := make(map[string]models.Term, len(parsed))
	for _, term := range parsed {
		byID[term.ID] = term
	}
	for _, want := range terms {
		got, ok := byID[want.ID]
		require.True(t, ok, want.ID)
		assert.Equal(t, want.CaseNumber, got.CaseNumber)
		assert.Equal(t, want.Court, got.Court)
		assert.Equal(t, want.TermTypeCode, got.TermTypeCode)
		assert.Equal(t, want.TermTypeLabel, got.TermTypeLabel)
		assert.Equal(t, want.StartDate, got.StartDate)
		assert.Equal(t, want.BusinessDays, got.BusinessDays)
		assert.Equal(t, want.DueDate, got.DueDate)
		assert.Equal(t, want.Notes, got.Notes)
		assert.True(t, want.LastModified.Equal(got.LastModified))
		if want.DueTime == nil {
			assert.Nil(t, got.DueTime)
		} else {
			require.NotNil(t, got.DueTime)
			assert.Equal(t, *want.DueTime, *got.DueTime)
		}
	}
}

func TestParseCSVRejectsReorderedHeader(t *testing.T) {
	svc := NewTransferService(&transferRepoStub{}, &dueSoonStub{}, nil, nil)
	payload := "caseNumber,id,court,termTypeCode,termTypeLabel,startDate,businessDays,dueDate,dueTime,notes,lastModified\n"

	_, _, err := svc.ParseCSV(strings.NewReader(payload))
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSchemaMismatch.Code, appErr.Code)
}

func TestParseCSVRejectsMissingColumns(t *testing.T) {
	svc := NewTransferService(&transferRepoStub{}, &dueSoonStub{}, nil, nil)
	payload := "id,caseNumber,court\n"

	_, _, err := svc.ParseCSV(strings.NewReader(payload))
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSchemaMismatch.Code, appErr.Code)
}

func TestParseCSVSkipsBrokenRows(t *testing.T) {
	svc := NewTransferService(&transferRepoStub{}, &dueSoonStub{}, nil, nil)
	payload := strings.Join([]string{
		strings.Join(termCSVHeaders, ","),
		"t1,2025-001,Court,recurso_reposicion,Label,2025-01-02,3,2025-01-07,,ok,2025-01-02T15:04:05Z",
		",2025-002,Court,other,Label,2025-01-02,3,,,missing id,2025-01-02T15:04:05Z",
		"t3,2025-003,Court,other,Label,not-a-date,3,,,bad start,2025-01-02T15:04:05Z",
		"t4,2025-004,Court,other,Label,2025-01-02,minus,,,bad days,2025-01-02T15:04:05Z",
		"t5,2025-005,Court,other,Label,2025-01-02,-1,,,negative days,2025-01-02T15:04:05Z",
		"t6,2025-006,Court,other,Label,2025-01-02,3,06/01/2025,,bad due date,2025-01-02T15:04:05Z",
		"t7,2025-007,Court,other,Label,2025-01-03,1,2025-01-06,,ok too,2025-01-03T10:00:00Z",
	}, "\n")

	parsed, skipped, err := svc.ParseCSV(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 5, skipped)
	require.Len(t, parsed, 2)
	assert.Equal(t, "t1", parsed[0].ID)
	assert.Equal(t, "t7", parsed[1].ID)
}

func TestParseCSVAllowsEmptyCaseNumber(t *testing.T) {
	svc := NewTransferService(&transferRepoStub{}, &dueSoonStub{}, nil, nil)
	payload := strings.Join([]string{
		strings.Join(termCSVHeaders, ","),
		"t1,,Court,other,Label,2025-01-02,3,2025-01-07,,sin expediente,2025-01-02T15:04:05Z",
	}, "\n")

	parsed, skipped, err := svc.ParseCSV(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, parsed, 1)
	assert.Empty(t, parsed[0].CaseNumber)
}

func TestImportMergesByID(t *testing.T) {
	repo := &transferRepoStub{}
	svc := NewTransferService(repo, &dueSoonStub{}, nil, nil)
	payload := strings.Join([]string{
		strings.Join(termCSVHeaders, ","),
		"t1,2025-001,Court,recurso_reposicion,Label,2025-01-02,3,2025-01-07,,n,2025-01-02T15:04:05Z",
		"bad-row,,,,,,,,,,",
	}, "\n")

	result, err := svc.Import(context.Background(), strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "t1", repo.upserted[0].ID)
}

func TestArchiveRoundTrip(t *testing.T) {
	svc := NewTransferService(&transferRepoStub{}, &dueSoonStub{}, nil, nil)

	name, token := svc.Archive([]byte("id\n"), "csv")
	assert.Empty(t, name, "archive disabled without storage attached")
	assert.Empty(t, token)

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc.AttachArchive(archive, storage.NewSignedURLSigner("secret", time.Hour))

	name, token = svc.Archive([]byte("id\n"), "csv")
	require.NotEmpty(t, name)
	require.NotEmpty(t, token)
	assert.True(t, strings.HasSuffix(name, ".csv"))

	file, err := svc.OpenArchive(name, token)
	require.NoError(t, err)
	defer file.Close()

	_, err = svc.OpenArchive(name, "tampered")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportPDFRendersDueSoonView(t *testing.T) {
	queries := &dueSoonStub{items: []models.QueryItem{
		{
			Term:      models.Term{CaseNumber: "2025-001", Court: "Juzgado", TermTypeLabel: "Recurso", DueDate: "2025-01-07"},
			Remaining: &models.DaysRemaining{Days: 1},
			Status:    models.StatusLabelUrgent,
		},
	}}
	svc := NewTransferService(&transferRepoStub{}, queries, nil, nil)

	payload, err := svc.ExportPDF(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

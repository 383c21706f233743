package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexterminus/terminus-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func termRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "case_number", "court", "term_type_code", "term_type_label",
		"start_date", "business_days", "due_date", "due_time", "notes", "last_modified",
	})
}

func TestTermRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	rows := termRows().
		AddRow("t1", "2025-001", "Juzgado Primero", "recurso_reposicion", "Recurso de Reposición",
			"2025-01-02", 3, "2025-01-07", nil, "", time.Now()).
		AddRow("t2", "2025-002", "Tribunal Superior", "other", "Otro: Audiencia",
			"2025-01-10", 0, "2025-01-10", "14:30", "nota", time.Now())
	mock.ExpectQuery("SELECT (.+) FROM terms ORDER BY last_modified").WillReturnRows(rows)

	terms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "t1", terms[0].ID)
	require.NotNil(t, terms[1].DueTime)
	assert.Equal(t, "14:30", *terms[1].DueTime)
}

func TestTermRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM terms WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTermRepositoryUpsertStampsLastModified(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	mock.ExpectExec("INSERT INTO terms").
		WillReturnResult(sqlmock.NewResult(0, 1))

	term := &models.Term{ID: "t1", CaseNumber: "2025-001", StartDate: "2025-01-02", BusinessDays: 3, DueDate: "2025-01-07"}
	before := time.Now().UTC()
	require.NoError(t, repo.Upsert(context.Background(), term))
	assert.False(t, term.LastModified.Before(before))
}

func TestTermRepositoryDeleteByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	mock.ExpectExec("DELETE FROM terms WHERE id").
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM terms WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTermRepositoryClear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	mock.ExpectExec("DELETE FROM terms").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.Clear(context.Background()))
}

func TestTermRepositoryUpdateDueDatesRunsInOneTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE terms SET due_date").
		WithArgs("2025-01-09", sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE terms SET due_date").
		WithArgs("2025-01-13", sqlmock.AnyArg(), "t2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now().UTC()
	terms := []models.Term{
		{ID: "t1", DueDate: "2025-01-09", LastModified: now},
		{ID: "t2", DueDate: "2025-01-13", LastModified: now},
	}
	require.NoError(t, repo.UpdateDueDates(context.Background(), terms))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryUpdateDueDatesRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE terms SET due_date").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	terms := []models.Term{{ID: "t1", DueDate: "2025-01-09", LastModified: time.Now()}}
	require.Error(t, repo.UpdateDueDates(context.Background(), terms))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryUpdateDueDatesNoopOnEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	require.NoError(t, repo.UpdateDueDates(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

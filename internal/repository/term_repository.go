package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexterminus/terminus-api/internal/models"
)

const termColumns = `id, case_number, court, term_type_code, term_type_label, start_date, business_days, due_date, due_time, notes, last_modified`

// TermRepository persists the deadline collection. Every read hands back an
// independent snapshot; every write is a single statement or transaction, so
// an operation is either fully applied or fully rejected.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// List returns a snapshot of every stored term.
func (r *TermRepository) List(ctx context.Context) ([]models.Term, error) {
	query := fmt.Sprintf("SELECT %s FROM terms ORDER BY last_modified DESC, id ASC", termColumns)
	terms := []models.Term{}
	if err := r.db.SelectContext(ctx, &terms, query); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// FindByID loads a term by identifier.
func (r *TermRepository) FindByID(ctx context.Context, id string) (*models.Term, error) {
	query := fmt.Sprintf("SELECT %s FROM terms WHERE id = $1", termColumns)
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, id); err != nil {
		return nil, err
	}
	return &term, nil
}

// Upsert inserts the term when its id is unseen and replaces it otherwise.
// LastModified is stamped on every call.
func (r *TermRepository) Upsert(ctx context.Context, term *models.Term) error {
	term.LastModified = time.Now().UTC()
	const query = `INSERT INTO terms (id, case_number, court, term_type_code, term_type_label, start_date, business_days, due_date, due_time, notes, last_modified)
VALUES (:id, :case_number, :court, :term_type_code, :term_type_label, :start_date, :business_days, :due_date, :due_time, :notes, :last_modified)
ON CONFLICT (id)
DO UPDATE SET case_number = EXCLUDED.case_number, court = EXCLUDED.court,
              term_type_code = EXCLUDED.term_type_code, term_type_label = EXCLUDED.term_type_label,
              start_date = EXCLUDED.start_date, business_days = EXCLUDED.business_days,
              due_date = EXCLUDED.due_date, due_time = EXCLUDED.due_time,
              notes = EXCLUDED.notes, last_modified = EXCLUDED.last_modified`
	if _, err := r.db.NamedExecContext(ctx, query, term); err != nil {
		return fmt.Errorf("upsert term: %w", err)
	}
	return nil
}

// BulkUpsert applies a batch of upserts within one transaction.
func (r *TermRepository) BulkUpsert(ctx context.Context, terms []models.Term) error {
	if len(terms) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk term tx: %w", err)
	}
	const query = `INSERT INTO terms (id, case_number, court, term_type_code, term_type_label, start_date, business_days, due_date, due_time, notes, last_modified)
VALUES (:id, :case_number, :court, :term_type_code, :term_type_label, :start_date, :business_days, :due_date, :due_time, :notes, :last_modified)
ON CONFLICT (id)
DO UPDATE SET case_number = EXCLUDED.case_number, court = EXCLUDED.court,
              term_type_code = EXCLUDED.term_type_code, term_type_label = EXCLUDED.term_type_label,
              start_date = EXCLUDED.start_date, business_days = EXCLUDED.business_days,
              due_date = EXCLUDED.due_date, due_time = EXCLUDED.due_time,
              notes = EXCLUDED.notes, last_modified = EXCLUDED.last_modified`
	for i := range terms {
		terms[i].LastModified = time.Now().UTC()
		if _, err := tx.NamedExecContext(ctx, query, terms[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert term: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk term tx: %w", err)
	}
	return nil
}

// DeleteByID removes the matching term, reporting whether anything matched.
func (r *TermRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM terms WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete term: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete term rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear irreversibly empties the collection.
func (r *TermRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM terms`); err != nil {
		return fmt.Errorf("clear terms: %w", err)
	}
	return nil
}

// UpdateDueDates rewrites the due date and modification stamp for the given
// terms in a single transaction; the recalculation pass commits as a whole.
func (r *TermRepository) UpdateDueDates(ctx context.Context, terms []models.Term) error {
	if len(terms) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin recalc tx: %w", err)
	}
	for i := range terms {
		if _, err := tx.ExecContext(ctx, `UPDATE terms SET due_date = $1, last_modified = $2 WHERE id = $3`,
			terms[i].DueDate, terms[i].LastModified, terms[i].ID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("update due date: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recalc tx: %w", err)
	}
	return nil
}

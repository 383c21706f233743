package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lexterminus/terminus-api/internal/models"
)

// SettingsRepository persists the single domain-settings record. The table
// holds exactly one row; reads and writes always cover the whole record.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get loads the settings record. Callers receive sql.ErrNoRows untouched
// when nothing has been persisted yet.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	const query = `SELECT holidays_text, warning_threshold_days, urgent_threshold_days, page_size, updated_at FROM settings WHERE id = 1`
	var settings models.Settings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save replaces the settings record as a whole.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO settings (id, holidays_text, warning_threshold_days, urgent_threshold_days, page_size, updated_at)
VALUES (1, :holidays_text, :warning_threshold_days, :urgent_threshold_days, :page_size, :updated_at)
ON CONFLICT (id)
DO UPDATE SET holidays_text = EXCLUDED.holidays_text,
              warning_threshold_days = EXCLUDED.warning_threshold_days,
              urgent_threshold_days = EXCLUDED.urgent_threshold_days,
              page_size = EXCLUDED.page_size, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

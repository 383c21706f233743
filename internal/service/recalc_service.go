package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
)

type recalcTermRepository interface {
	List(ctx context.Context) ([]models.Term, error)
	UpdateDueDates(ctx context.Context, terms []models.Term) error
}

type settingsLoader interface {
	Load(ctx context.Context) (*models.Settings, error)
}

// RecalcService walks the whole collection and re-derives every due date
// from its start date and business-day count under the current holiday set.
// One bad term never aborts the pass; it is counted and the walk continues.
type RecalcService struct {
	terms    recalcTermRepository
	settings settingsLoader
	calendar *CalendarService
	cache    *CacheService
	logger   *zap.Logger
}

// NewRecalcService constructs a RecalcService.
func NewRecalcService(terms recalcTermRepository, settings settingsLoader, calendar *CalendarService, cache *CacheService, logger *zap.Logger) *RecalcService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalcService{terms: terms, settings: settings, calendar: calendar, cache: cache, logger: logger}
}

// Run executes one recalculation pass. Terms whose inputs cannot produce a
// projection are skipped; projection failures are counted as errors. Only
// terms whose due date actually moved are written back, in one transaction,
// so running the pass twice in a row reports zero updates the second time.
func (s *RecalcService) Run(ctx context.Context) (*models.RecalcResult, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	holidays, _ := s.calendar.ParseHolidaySet(settings.HolidaysText)

	terms, err := s.terms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load terms for recalculation")
	}

	result := &models.RecalcResult{}
	changed := make([]models.Term, 0, len(terms))
	now := time.Now().UTC()
	for _, term := range terms {
		if term.BusinessDays < 0 {
			result.Skipped++
			continue
		}
		if _, parseErr := ParseDate(term.StartDate); parseErr != nil {
			result.Skipped++
			continue
		}
		dueDate, projErr := s.calendar.ProjectDueDate(term.StartDate, term.BusinessDays, holidays)
		if projErr != nil {
			s.logger.Warn("recalculation failed for term",
				zap.String("term_id", term.ID),
				zap.Error(projErr))
			result.Errors++
			continue
		}
		if dueDate == term.DueDate {
			continue
		}
		term.DueDate = dueDate
		term.LastModified = now
		changed = append(changed, term)
	}

	if err := s.terms.UpdateDueDates(ctx, changed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist recalculated due dates")
	}
	result.Updated = len(changed)

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, termQueryCachePattern)
	}

	s.logger.Info("recalculation pass finished",
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors))
	return result, nil
}

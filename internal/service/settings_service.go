package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/lexterminus/terminus-api/internal/dto"
	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

// Recalculator re-derives every stored due date against the current holiday
// calendar. Implemented by RecalcService; attached after construction to
// break the settings/recalc dependency cycle.
type Recalculator interface {
	Run(ctx context.Context) (*models.RecalcResult, error)
}

// SettingsService owns the single settings record: holiday calendar text,
// alert thresholds and page size. Reads never fail; a broken or missing
// record degrades to the built-in defaults so the calendar engine always has
// a configuration to work with.
type SettingsService struct {
	repo     settingsRepository
	calendar *CalendarService
	cache    *CacheService
	recalc   Recalculator
	logger   *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, calendar *CalendarService, cache *CacheService, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, calendar: calendar, cache: cache, logger: logger}
}

// AttachRecalculator wires the recalculation pass triggered by holiday edits.
func (s *SettingsService) AttachRecalculator(recalc Recalculator) {
	s.recalc = recalc
}

// Load returns the persisted settings, seeding and returning the defaults
// when no record exists yet. Storage failures are logged and answered with
// the defaults; configuration reads must not take the tracker down.
func (s *SettingsService) Load(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := models.DefaultSettings()
			if saveErr := s.repo.Save(ctx, defaults); saveErr != nil {
				s.logger.Warn("failed to seed default settings", zap.Error(saveErr))
			}
			return defaults, nil
		}
		s.logger.Warn("settings load failed, using defaults", zap.Error(err))
		return models.DefaultSettings(), nil
	}
	return s.clamp(settings), nil
}

// Save replaces the settings record. Out-of-range values are clamped into
// the valid range rather than rejected. When the holiday text changed and
// triggerRecalc is set, every stored due date is re-derived before returning;
// the recalculation outcome rides along in the second return value.
func (s *SettingsService) Save(ctx context.Context, req dto.UpdateSettingsRequest, triggerRecalc bool) (*models.Settings, *models.RecalcResult, error) {
	previous, err := s.repo.Get(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load current settings")
	}

	settings := s.clamp(&models.Settings{
		HolidaysText:         req.HolidaysText,
		WarningThresholdDays: req.WarningThresholdDays,
		UrgentThresholdDays:  req.UrgentThresholdDays,
		PageSize:             req.PageSize,
	})

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to save settings")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, termQueryCachePattern)
	}

	holidaysChanged := previous == nil || previous.HolidaysText != settings.HolidaysText
	var recalcResult *models.RecalcResult
	if holidaysChanged && triggerRecalc && s.recalc != nil {
		recalcResult, err = s.recalc.Run(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	return settings, recalcResult, nil
}

// Reset restores the built-in defaults and recalculates against them.
func (s *SettingsService) Reset(ctx context.Context) (*models.Settings, *models.RecalcResult, error) {
	defaults := models.DefaultSettings()
	return s.Save(ctx, dto.UpdateSettingsRequest{
		HolidaysText:         defaults.HolidaysText,
		WarningThresholdDays: defaults.WarningThresholdDays,
		UrgentThresholdDays:  defaults.UrgentThresholdDays,
		PageSize:             defaults.PageSize,
	}, true)
}

// Describe renders the settings together with holiday-parse diagnostics.
func (s *SettingsService) Describe(ctx context.Context) (*dto.SettingsResponse, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	set, invalid := s.calendar.ParseHolidaySet(settings.HolidaysText)
	return &dto.SettingsResponse{
		HolidaysText:         settings.HolidaysText,
		WarningThresholdDays: settings.WarningThresholdDays,
		UrgentThresholdDays:  settings.UrgentThresholdDays,
		PageSize:             settings.PageSize,
		HolidayCount:         len(set),
		InvalidHolidayLines:  invalid,
		UpdatedAt:            settings.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// clamp forces the record into its invariants: warning >= 1, urgent >= 0,
// urgent <= warning, page size drawn from the allowed set.
func (s *SettingsService) clamp(settings *models.Settings) *models.Settings {
	if settings.WarningThresholdDays < 1 {
		settings.WarningThresholdDays = 1
	}
	if settings.UrgentThresholdDays < 0 {
		settings.UrgentThresholdDays = 0
	}
	if settings.UrgentThresholdDays > settings.WarningThresholdDays {
		settings.UrgentThresholdDays = settings.WarningThresholdDays
	}
	allowed := false
	for _, size := range models.AllowedPageSizes {
		if settings.PageSize == size {
			allowed = true
			break
		}
	}
	if !allowed {
		settings.PageSize = models.DefaultPageSize
	}
	return settings
}

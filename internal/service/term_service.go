package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexterminus/terminus-api/internal/dto"
	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
)

// ClearConfirmToken must be echoed verbatim before the collection wipe runs.
const ClearConfirmToken = "DELETE-ALL-TERMS"

type termRepository interface {
	List(ctx context.Context) ([]models.Term, error)
	FindByID(ctx context.Context, id string) (*models.Term, error)
	Upsert(ctx context.Context, term *models.Term) error
	DeleteByID(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}

// TermService owns the term lifecycle: registration, replacement, deletion
// and the guarded collection wipe. Due dates are derived at write time so the
// stored record always carries the projection current at its last write.
type TermService struct {
	repo      termRepository
	settings  settingsLoader
	calendar  *CalendarService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermService constructs a TermService.
func NewTermService(repo termRepository, settings settingsLoader, calendar *CalendarService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{
		repo:      repo,
		settings:  settings,
		calendar:  calendar,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// List returns every stored term.
func (s *TermService) List(ctx context.Context) ([]models.Term, error) {
	terms, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list terms")
	}
	return terms, nil
}

// Get loads a single term by id.
func (s *TermService) Get(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load term")
	}
	return term, nil
}

// Create registers a new term. The due date is projected from the start date
// and business-day count against the current holiday calendar before the
// record is persisted.
func (s *TermService) Create(ctx context.Context, req dto.SaveTermRequest) (*models.Term, error) {
	term, err := s.buildTerm(ctx, newTermID(), req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to save term")
	}
	s.invalidateViews(ctx)
	s.logger.Info("term registered", zap.String("term_id", term.ID), zap.String("case_number", term.CaseNumber))
	return term, nil
}

// Update replaces an existing term wholesale, recomputing its due date.
func (s *TermService) Update(ctx context.Context, id string, req dto.SaveTermRequest) (*models.Term, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	term, err := s.buildTerm(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update term")
	}
	s.invalidateViews(ctx)
	return term, nil
}

// Delete removes a term by id.
func (s *TermService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete term")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "term not found")
	}
	s.invalidateViews(ctx)
	return nil
}

// Clear wipes the whole collection. The request must carry the confirmation
// token; anything else fails the precondition and nothing is deleted.
func (s *TermService) Clear(ctx context.Context, req dto.ClearTermsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clear payload")
	}
	if req.Confirm != ClearConfirmToken {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("collection wipe requires confirmation token %q", ClearConfirmToken))
	}
	if err := s.repo.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to clear terms")
	}
	s.invalidateViews(ctx)
	s.logger.Warn("term collection cleared")
	return nil
}

// ListTypes exposes the read-only term-type catalog.
func (s *TermService) ListTypes() []dto.TermTypeItem {
	items := make([]dto.TermTypeItem, 0, len(models.TermTypes))
	for _, t := range models.TermTypes {
		items = append(items, dto.TermTypeItem{Code: t.Code, Label: t.Label, DefaultDays: t.DefaultDays})
	}
	return items
}

func (s *TermService) buildTerm(ctx context.Context, id string, req dto.SaveTermRequest) (*models.Term, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term payload")
	}

	termType, ok := models.FindTermType(req.TermTypeCode)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown term type %q", req.TermTypeCode))
	}
	label := termType.Label
	if termType.Code == models.TermTypeOther {
		custom := strings.TrimSpace(req.TermTypeLabel)
		if custom == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "term type \"other\" requires a label")
		}
		label = fmt.Sprintf("Otro: %s", custom)
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	holidays, _ := s.calendar.ParseHolidaySet(settings.HolidaysText)
	dueDate, err := s.calendar.ProjectDueDate(req.StartDate, req.BusinessDays, holidays)
	if err != nil {
		return nil, err
	}

	return &models.Term{
		ID:            id,
		CaseNumber:    strings.TrimSpace(req.CaseNumber),
		Court:         strings.TrimSpace(req.Court),
		TermTypeCode:  termType.Code,
		TermTypeLabel: label,
		StartDate:     req.StartDate,
		BusinessDays:  req.BusinessDays,
		DueDate:       dueDate,
		DueTime:       req.DueTime,
		Notes:         strings.TrimSpace(req.Notes),
	}, nil
}

func (s *TermService) invalidateViews(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, termQueryCachePattern)
	}
}

// newTermID issues a time-ordered unique identifier.
func newTermID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

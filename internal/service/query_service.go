package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
)

// termQueryCachePattern matches every cached view page; writes anywhere in
// the collection or settings invalidate the lot.
const termQueryCachePattern = "terms:query:*"

type queryTermLister interface {
	List(ctx context.Context) ([]models.Term, error)
}

// QueryService derives the two read views over the term collection from a
// single snapshot: the searchable chronological registry and the
// status-filtered due-soon list. Remaining days and status labels are
// computed live against today and never persisted.
type QueryService struct {
	terms    queryTermLister
	settings settingsLoader
	calendar *CalendarService
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewQueryService constructs a QueryService.
func NewQueryService(terms queryTermLister, settings settingsLoader, calendar *CalendarService, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		terms:    terms,
		settings: settings,
		calendar: calendar,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// queryPage is the cached unit: one rendered view page.
type queryPage struct {
	Items      []models.QueryItem `json:"items"`
	Pagination models.Pagination  `json:"pagination"`
}

// Query runs the shared filter, sort and paginate pipeline for the requested
// view. Page size always comes from the persisted settings; the page number
// is clamped into the valid range instead of erroring.
func (s *QueryService) Query(ctx context.Context, params models.QueryParams) ([]models.QueryItem, *models.Pagination, error) {
	params = normalizeParams(params)
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	today := NormalizeDay(s.now())

	cacheKey := fmt.Sprintf("terms:query:%s:%s:%s:%s:%d:%s",
		params.View, strings.ToLower(params.Search), params.Sort, params.Status, params.Page, FormatDate(today))
	var cached queryPage
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached.Items, &cached.Pagination, nil
	}

	start := time.Now()
	terms, err := s.terms.List(ctx)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("terms_list", time.Since(start))
	}
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load terms")
	}

	holidays, _ := s.calendar.ParseHolidaySet(settings.HolidaysText)
	items := s.annotate(terms, today, holidays, settings)

	switch params.View {
	case models.ViewDueSoon:
		items = filterDueSoon(items, params.Status)
		sortByDueDate(items)
	default:
		items = filterSearch(items, params.Search)
		sortChronological(items, params.Sort)
	}

	page, pagination := paginate(items, params.Page, settings.PageSize)
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, queryPage{Items: page, Pagination: *pagination}, 0)
	}
	return page, pagination, nil
}

// DueSoon returns the full due-soon view without pagination, for reporting.
func (s *QueryService) DueSoon(ctx context.Context) ([]models.QueryItem, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	terms, err := s.terms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load terms")
	}
	holidays, _ := s.calendar.ParseHolidaySet(settings.HolidaysText)
	items := filterDueSoon(s.annotate(terms, NormalizeDay(s.now()), holidays, settings), models.StatusFilterAll)
	sortByDueDate(items)
	return items, nil
}

// annotate attaches live remaining-days and status to each term. A term
// whose due date cannot be evaluated keeps a nil Remaining and empty status.
func (s *QueryService) annotate(terms []models.Term, today time.Time, holidays models.HolidaySet, settings *models.Settings) []models.QueryItem {
	items := make([]models.QueryItem, 0, len(terms))
	for _, term := range terms {
		item := models.QueryItem{Term: term}
		if term.DueDate != "" {
			remaining, err := s.calendar.DaysRemaining(term.DueDate, today, holidays)
			if err != nil {
				s.logger.Warn("remaining-days computation failed",
					zap.String("term_id", term.ID), zap.Error(err))
			} else {
				item.Remaining = remaining
				item.Status = StatusLabel(remaining, settings)
			}
		}
		items = append(items, item)
	}
	return items
}

func normalizeParams(params models.QueryParams) models.QueryParams {
	if params.View != models.ViewDueSoon {
		params.View = models.ViewChronological
	}
	switch params.Sort {
	case models.SortRegistrationAsc, models.SortRegistrationDesc,
		models.SortDueDateAsc, models.SortDueDateDesc,
		models.SortCaseNumberAsc, models.SortCaseNumberDesc:
	default:
		params.Sort = models.SortRegistrationDesc
	}
	switch params.Status {
	case models.StatusFilterPending, models.StatusFilterUrgent,
		models.StatusFilterWarning, models.StatusFilterPastDue, models.StatusFilterAll:
	default:
		params.Status = models.StatusFilterPending
	}
	if params.Page < 1 {
		params.Page = 1
	}
	return params
}

// filterSearch keeps terms whose case number, court, type label or notes
// contain the needle, case-insensitively. An empty needle keeps everything.
func filterSearch(items []models.QueryItem, search string) []models.QueryItem {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return items
	}
	filtered := make([]models.QueryItem, 0, len(items))
	for _, item := range items {
		haystack := strings.ToLower(strings.Join([]string{
			item.Term.CaseNumber,
			item.Term.Court,
			item.Term.TermTypeLabel,
			item.Term.Notes,
		}, "\n"))
		if strings.Contains(haystack, needle) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// filterDueSoon drops terms without an evaluable due date, then applies the
// status filter. Urgent includes past-due; warning excludes it.
func filterDueSoon(items []models.QueryItem, status models.StatusFilter) []models.QueryItem {
	filtered := make([]models.QueryItem, 0, len(items))
	for _, item := range items {
		if item.Remaining == nil {
			continue
		}
		if matchesStatus(item, status) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func matchesStatus(item models.QueryItem, status models.StatusFilter) bool {
	r := item.Remaining
	switch status {
	case models.StatusFilterAll:
		return true
	case models.StatusFilterPastDue:
		return r.IsPast
	case models.StatusFilterUrgent:
		return item.Status == models.StatusLabelUrgent
	case models.StatusFilterWarning:
		return item.Status == models.StatusLabelWarning
	default: // pending
		return !r.IsPast
	}
}

// sortByDueDate orders by due date ascending; canonical YYYY-MM-DD strings
// compare correctly as text. Ties keep their input order.
func sortByDueDate(items []models.QueryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Term.DueDate < items[j].Term.DueDate
	})
}

func sortChronological(items []models.QueryItem, key models.SortKey) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Term, items[j].Term
		switch key {
		case models.SortRegistrationAsc:
			return a.LastModified.Before(b.LastModified)
		case models.SortDueDateAsc:
			return a.DueDate < b.DueDate
		case models.SortDueDateDesc:
			return a.DueDate > b.DueDate
		case models.SortCaseNumberAsc:
			return a.CaseNumber < b.CaseNumber
		case models.SortCaseNumberDesc:
			return a.CaseNumber > b.CaseNumber
		default:
			return a.LastModified.After(b.LastModified)
		}
	})
}

// paginate slices one page out, clamping the page number into range. An
// empty result yields page 1 with zero items rather than an error.
func paginate(items []models.QueryItem, page, pageSize int) ([]models.QueryItem, *models.Pagination) {
	total := len(items)
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return items[start:end], &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}

package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexterminus/terminus-api/internal/models"
	appErrors "github.com/lexterminus/terminus-api/pkg/errors"
)

// DateLayout is the canonical calendar-date format used everywhere: holiday
// lines, term start/due dates and the CSV interchange schema.
const DateLayout = "2006-01-02"

// maxFutureIterations bounds the forward walk in DaysRemaining.
const maxFutureIterations = 365 * 10

var dateLinePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CalendarService is the business-day engine: weekend/holiday predicate,
// forward due-date projection and live days-remaining computation. It is
// stateless; every call receives the holiday set to evaluate against.
type CalendarService struct {
	logger *zap.Logger
}

// NewCalendarService constructs the calendar engine.
func NewCalendarService(logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{logger: logger}
}

// ParseDate parses a canonical YYYY-MM-DD string into a UTC midnight time.
// It rejects both syntactic garbage and logically impossible dates such as
// February 30th.
func ParseDate(value string) (time.Time, error) {
	if !dateLinePattern.MatchString(value) {
		return time.Time{}, fmt.Errorf("date %q is not in YYYY-MM-DD form", value)
	}
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not a valid calendar date", value)
	}
	return t, nil
}

// FormatDate renders a time as its canonical YYYY-MM-DD string (UTC).
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseHolidaySet rebuilds the holiday set from the multi-line settings
// text. Lines that fail syntax or logical date validity are dropped and
// counted, never fatal.
func (s *CalendarService) ParseHolidaySet(text string) (models.HolidaySet, int) {
	set := make(models.HolidaySet)
	invalid := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := ParseDate(line); err != nil {
			invalid++
			continue
		}
		set[line] = struct{}{}
	}
	if invalid > 0 {
		s.logger.Warn("holiday lines dropped", zap.Int("invalid", invalid), zap.Int("kept", len(set)))
	}
	return set, invalid
}

// IsBusinessDay reports whether the date is neither a weekend day (UTC
// weekday) nor present in the holiday set.
func (s *CalendarService) IsBusinessDay(date time.Time, holidays models.HolidaySet) bool {
	switch date.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !holidays.Has(FormatDate(date))
}

// ProjectDueDate advances from startDate one calendar day at a time,
// counting business days until businessDays have been consumed, and returns
// the date landed on.
//
// businessDays == 0 returns startDate unchanged: a zero-day term is due the
// day it starts, whether or not that day is a business day. Iteration is
// capped so a degenerate holiday calendar yields a computation error rather
// than an unbounded walk.
func (s *CalendarService) ProjectDueDate(startDate string, businessDays int, holidays models.HolidaySet) (string, error) {
	if businessDays < 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("business days must be >= 0, got %d", businessDays))
	}
	current, err := ParseDate(startDate)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	if businessDays == 0 {
		return startDate, nil
	}

	maxIterations := businessDays*5 + 100
	counted := 0
	for iterations := 0; counted < businessDays; iterations++ {
		if iterations >= maxIterations {
			s.logger.Error("due date projection exceeded iteration cap",
				zap.String("start_date", startDate),
				zap.Int("business_days", businessDays),
				zap.Int("cap", maxIterations))
			return "", appErrors.Clone(appErrors.ErrComputation, "")
		}
		current = current.AddDate(0, 0, 1)
		if s.IsBusinessDay(current, holidays) {
			counted++
		}
	}
	return FormatDate(current), nil
}

// DaysRemaining compares dueDate against today at day granularity.
//
// Past-due terms report the absolute calendar-day distance as a negative
// count; future terms report the business days strictly after today up to
// and including the due date. The mixed units are intentional and kept for
// behavioural compatibility.
func (s *CalendarService) DaysRemaining(dueDate string, today time.Time, holidays models.HolidaySet) (*models.DaysRemaining, error) {
	due, err := ParseDate(dueDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid due date")
	}
	day := NormalizeDay(today)

	switch {
	case due.Before(day):
		calendarDays := int(day.Sub(due).Hours() / 24)
		return &models.DaysRemaining{Days: -calendarDays, IsPast: true}, nil
	case due.Equal(day):
		return &models.DaysRemaining{Days: 0, IsToday: true}, nil
	default:
		remaining := 0
		cursor := day
		for iterations := 0; cursor.Before(due); iterations++ {
			if iterations >= maxFutureIterations {
				return nil, appErrors.Clone(appErrors.ErrComputation, "remaining-days computation exceeded its bound")
			}
			cursor = cursor.AddDate(0, 0, 1)
			if !cursor.After(due) && s.IsBusinessDay(cursor, holidays) {
				remaining++
			}
		}
		return &models.DaysRemaining{Days: remaining}, nil
	}
}

// StatusLabel classifies a remaining-days result against the configured
// thresholds. Past-due and urgent share a label; the urgent check wins ties.
func StatusLabel(remaining *models.DaysRemaining, settings *models.Settings) string {
	if remaining == nil {
		return ""
	}
	if remaining.IsPast || remaining.Days <= settings.UrgentThresholdDays {
		return models.StatusLabelUrgent
	}
	if remaining.Days <= settings.WarningThresholdDays {
		return models.StatusLabelWarning
	}
	return models.StatusLabelNormal
}

// NormalizeDay truncates a timestamp to UTC midnight.
func NormalizeDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

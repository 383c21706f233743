package models

import (
	"strings"
	"time"
)

// Settings is the single persisted domain-configuration record.
//
// HolidaysText is the authoritative source for the holiday set: one
// YYYY-MM-DD date per line. Threshold fields hold the invariant
// UrgentThresholdDays <= WarningThresholdDays.
type Settings struct {
	HolidaysText         string    `db:"holidays_text" json:"holidays_text"`
	WarningThresholdDays int       `db:"warning_threshold_days" json:"warning_threshold_days"`
	UrgentThresholdDays  int       `db:"urgent_threshold_days" json:"urgent_threshold_days"`
	PageSize             int       `db:"page_size" json:"page_size"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// AllowedPageSizes enumerates the accepted page sizes; anything else is
// coerced to DefaultPageSize.
var AllowedPageSizes = []int{10, 25, 50, 100}

const (
	DefaultWarningThresholdDays = 5
	DefaultUrgentThresholdDays  = 2
	DefaultPageSize             = 25
)

// defaultHolidays lists the Colombian national holidays for 2025. It ships
// as a starting point; the calendar must be maintained year over year.
var defaultHolidays = []string{
	"2025-01-01",
	"2025-01-06",
	"2025-03-24",
	"2025-04-17",
	"2025-04-18",
	"2025-05-01",
	"2025-06-02",
	"2025-06-23",
	"2025-06-30",
	"2025-07-20",
	"2025-08-07",
	"2025-08-18",
	"2025-10-13",
	"2025-11-03",
	"2025-11-17",
	"2025-12-08",
	"2025-12-25",
}

// DefaultSettings returns a fresh copy of the built-in configuration.
func DefaultSettings() *Settings {
	return &Settings{
		HolidaysText:         strings.Join(defaultHolidays, "\n"),
		WarningThresholdDays: DefaultWarningThresholdDays,
		UrgentThresholdDays:  DefaultUrgentThresholdDays,
		PageSize:             DefaultPageSize,
	}
}

// HolidaySet is the validated collection of dates excluded from
// business-day counting, keyed by canonical YYYY-MM-DD strings.
type HolidaySet map[string]struct{}

// Has reports whether the canonical date string is a holiday.
func (h HolidaySet) Has(date string) bool {
	_, ok := h[date]
	return ok
}

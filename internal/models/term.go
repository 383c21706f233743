package models

import "time"

// Term models a single procedural deadline: a start date plus a count of
// business days, with the derived due date stored alongside.
//
// StartDate and DueDate are canonical YYYY-MM-DD strings; DueDate must equal
// the projection of StartDate over BusinessDays under the holiday set active
// at the last recalculation. It may be transiently stale between a holiday
// edit and the next recalculation pass.
type Term struct {
	ID            string    `db:"id" json:"id"`
	CaseNumber    string    `db:"case_number" json:"case_number"`
	Court         string    `db:"court" json:"court"`
	TermTypeCode  string    `db:"term_type_code" json:"term_type_code"`
	TermTypeLabel string    `db:"term_type_label" json:"term_type_label"`
	StartDate     string    `db:"start_date" json:"start_date"`
	BusinessDays  int       `db:"business_days" json:"business_days"`
	DueDate       string    `db:"due_date" json:"due_date"`
	DueTime       *string   `db:"due_time" json:"due_time,omitempty"`
	Notes         string    `db:"notes" json:"notes"`
	LastModified  time.Time `db:"last_modified" json:"last_modified"`
}

// DaysRemaining describes a term's live distance from today.
//
// The forward branch counts business days; the past-due branch reports the
// calendar-day distance as a negative number. The asymmetry matches the
// behaviour clients already depend on and is kept deliberately.
type DaysRemaining struct {
	Days    int  `json:"days"`
	IsPast  bool `json:"is_past"`
	IsToday bool `json:"is_today"`
}

// RecalcResult aggregates one cascade-recalculation pass.
type RecalcResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// ImportResult aggregates a CSV import batch.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

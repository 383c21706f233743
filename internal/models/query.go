package models

// ViewKind selects which of the two term views a query targets.
type ViewKind string

const (
	// ViewChronological is the free-text searchable registry view.
	ViewChronological ViewKind = "chronological"
	// ViewDueSoon is the status-filtered view sorted by due date ascending.
	ViewDueSoon ViewKind = "due_soon"
)

// SortKey orders the chronological view.
type SortKey string

const (
	SortRegistrationAsc  SortKey = "registration_asc"
	SortRegistrationDesc SortKey = "registration_desc"
	SortDueDateAsc       SortKey = "due_asc"
	SortDueDateDesc      SortKey = "due_desc"
	SortCaseNumberAsc    SortKey = "case_asc"
	SortCaseNumberDesc   SortKey = "case_desc"
)

// StatusFilter narrows the due-soon view.
type StatusFilter string

const (
	StatusFilterPending StatusFilter = "pending"
	StatusFilterUrgent  StatusFilter = "urgent"
	StatusFilterWarning StatusFilter = "warning"
	StatusFilterPastDue StatusFilter = "past_due"
	StatusFilterAll     StatusFilter = "all"
)

// Display status labels, in precedence order.
const (
	StatusLabelUrgent  = "urgent"
	StatusLabelWarning = "warning"
	StatusLabelNormal  = "normal"
)

// QueryParams parameterizes the shared filter → sort → paginate pipeline.
// Page size always comes from the persisted settings record.
type QueryParams struct {
	View   ViewKind
	Search string
	Sort   SortKey
	Status StatusFilter
	Page   int
}

// QueryItem is one row of a view page: the term plus its live status.
// Remaining is nil when the term has no computable due date.
type QueryItem struct {
	Term      Term           `json:"term"`
	Remaining *DaysRemaining `json:"remaining,omitempty"`
	Status    string         `json:"status,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

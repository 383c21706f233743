package dto

// SaveTermRequest describes the payload for registering or replacing a term.
type SaveTermRequest struct {
	CaseNumber    string  `json:"case_number" validate:"required,max=120"`
	Court         string  `json:"court" validate:"omitempty,max=200"`
	TermTypeCode  string  `json:"term_type_code" validate:"required"`
	TermTypeLabel string  `json:"term_type_label" validate:"omitempty,max=200"`
	StartDate     string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	BusinessDays  int     `json:"business_days" validate:"min=0,max=365"`
	DueTime       *string `json:"due_time" validate:"omitempty,datetime=15:04"`
	Notes         string  `json:"notes" validate:"max=1000"`
}

// ClearTermsRequest guards the destructive collection wipe. Confirm must
// carry the exact token before anything is deleted.
type ClearTermsRequest struct {
	Confirm string `json:"confirm" validate:"required"`
}

// TermTypeItem is one catalog entry exposed via API.
type TermTypeItem struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	DefaultDays *int   `json:"default_days,omitempty"`
}

package dto

// UpdateSettingsRequest carries a full replacement of the settings record.
// Out-of-range thresholds and page sizes are clamped, not rejected.
type UpdateSettingsRequest struct {
	HolidaysText         string `json:"holidays_text"`
	WarningThresholdDays int    `json:"warning_threshold_days"`
	UrgentThresholdDays  int    `json:"urgent_threshold_days"`
	PageSize             int    `json:"page_size"`
}

// SettingsResponse is the settings record as exposed via API, annotated with
// how many holiday lines failed validation on the last parse.
type SettingsResponse struct {
	HolidaysText         string `json:"holidays_text"`
	WarningThresholdDays int    `json:"warning_threshold_days"`
	UrgentThresholdDays  int    `json:"urgent_threshold_days"`
	PageSize             int    `json:"page_size"`
	HolidayCount         int    `json:"holiday_count"`
	InvalidHolidayLines  int    `json:"invalid_holiday_lines"`
	UpdatedAt            string `json:"updated_at"`
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexterminus/terminus-api/internal/dto"
	"github.com/lexterminus/terminus-api/internal/models"
)

type settingsRepoStub struct {
	record  *models.Settings
	getErr  error
	saveErr error
	saves   int
}

func (s *settingsRepoStub) Get(ctx context.Context) (*models.Settings, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.record == nil {
		return nil, sql.ErrNoRows
	}
	copied := *s.record
	return &copied, nil
}

func (s *settingsRepoStub) Save(ctx context.Context, settings *models.Settings) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	copied := *settings
	s.record = &copied
	return nil
}

type recalcStub struct {
	runs   int
	result *models.RecalcResult
	err    error
}

func (r *recalcStub) Run(ctx context.Context) (*models.RecalcResult, error) {
	r.runs++
	if r.err != nil {
		return nil, r.err
	}
	if r.result != nil {
		return r.result, nil
	}
	return &models.RecalcResult{}, nil
}

func newSettingsService(repo *settingsRepoStub) (*SettingsService, *recalcStub) {
	svc := NewSettingsService(repo, NewCalendarService(nil), nil, nil)
	recalc := &recalcStub{}
	svc.AttachRecalculator(recalc)
	return svc, recalc
}

func TestSettingsLoadSeedsDefaultsWhenMissing(t *testing.T) {
	repo := &settingsRepoStub{}
	svc, _ := newSettingsService(repo)

	settings, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings().HolidaysText, settings.HolidaysText)
	assert.Equal(t, models.DefaultPageSize, settings.PageSize)
	assert.Equal(t, 1, repo.saves)
}

func TestSettingsLoadFallsBackToDefaultsOnStorageFailure(t *testing.T) {
	repo := &settingsRepoStub{getErr: errors.New("connection refused")}
	svc, _ := newSettingsService(repo)

	settings, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultWarningThresholdDays, settings.WarningThresholdDays)
	assert.Equal(t, models.DefaultUrgentThresholdDays, settings.UrgentThresholdDays)
}

func TestSettingsSaveClampsThresholds(t *testing.T) {
	repo := &settingsRepoStub{record: models.DefaultSettings()}
	svc, _ := newSettingsService(repo)

	saved, _, err := svc.Save(context.Background(), dto.UpdateSettingsRequest{
		HolidaysText:         repo.record.HolidaysText,
		WarningThresholdDays: 0,
		UrgentThresholdDays:  -4,
		PageSize:             33,
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.WarningThresholdDays)
	assert.Equal(t, 0, saved.UrgentThresholdDays)
	assert.Equal(t, models.DefaultPageSize, saved.PageSize)
}

func TestSettingsSaveCoercesUrgentAboveWarning(t *testing.T) {
	repo := &settingsRepoStub{record: models.DefaultSettings()}
	svc, _ := newSettingsService(repo)

	saved, _, err := svc.Save(context.Background(), dto.UpdateSettingsRequest{
		HolidaysText:         repo.record.HolidaysText,
		WarningThresholdDays: 4,
		UrgentThresholdDays:  9,
		PageSize:             50,
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 4, saved.WarningThresholdDays)
	assert.Equal(t, 4, saved.UrgentThresholdDays)
	assert.Equal(t, 50, saved.PageSize)
}

func TestSettingsSaveTriggersRecalcOnHolidayChange(t *testing.T) {
	repo := &settingsRepoStub{record: models.DefaultSettings()}
	svc, recalc := newSettingsService(repo)
	recalc.result = &models.RecalcResult{Updated: 3}

	_, result, err := svc.Save(context.Background(), dto.UpdateSettingsRequest{
		HolidaysText:         "2025-06-30",
		WarningThresholdDays: 5,
		UrgentThresholdDays:  2,
		PageSize:             25,
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, recalc.runs)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Updated)
}

func TestSettingsSaveSkipsRecalcWhenHolidaysUnchanged(t *testing.T) {
	repo := &settingsRepoStub{record: models.DefaultSettings()}
	svc, recalc := newSettingsService(repo)

	_, result, err := svc.Save(context.Background(), dto.UpdateSettingsRequest{
		HolidaysText:         repo.record.HolidaysText,
		WarningThresholdDays: 7,
		UrgentThresholdDays:  1,
		PageSize:             10,
	}, true)
	require.NoError(t, err)
	assert.Zero(t, recalc.runs)
	assert.Nil(t, result)
}

func TestSettingsSaveSkipsRecalcWhenNotRequested(t *testing.T) {
	repo := &settingsRepoStub{record: models.DefaultSettings()}
	svc, recalc := newSettingsService(repo)

	_, result, err := svc.Save(context.Background(), dto.UpdateSettingsRequest{
		HolidaysText:         "2025-06-30",
		WarningThresholdDays: 5,
		UrgentThresholdDays:  2,
		PageSize:             25,
	}, false)
	require.NoError(t, err)
	assert.Zero(t, recalc.runs)
	assert.Nil(t, result)
}

func TestSettingsResetRestoresDefaults(t *testing.T) {
	repo := &settingsRepoStub{record: &models.Settings{
		HolidaysText:         "2025-06-30",
		WarningThresholdDays: 9,
		UrgentThresholdDays:  9,
		PageSize:             100,
	}}
	svc, recalc := newSettingsService(repo)

	saved, _, err := svc.Reset(context.Background())
	require.NoError(t, err)
	defaults := models.DefaultSettings()
	assert.Equal(t, defaults.HolidaysText, saved.HolidaysText)
	assert.Equal(t, defaults.WarningThresholdDays, saved.WarningThresholdDays)
	assert.Equal(t, defaults.PageSize, saved.PageSize)
	assert.Equal(t, 1, recalc.runs)
}

func TestSettingsDescribeReportsHolidayDiagnostics(t *testing.T) {
	repo := &settingsRepoStub{record: &models.Settings{
		HolidaysText:         "2025-01-01\nbogus\n2025-12-25",
		WarningThresholdDays: 5,
		UrgentThresholdDays:  2,
		PageSize:             25,
	}}
	svc, _ := newSettingsService(repo)

	described, err := svc.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, described.HolidayCount)
	assert.Equal(t, 1, described.InvalidHolidayLines)
}

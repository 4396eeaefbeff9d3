package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosign/spin-api/internal/domain"
)

type fakeAnalyticsStats struct {
	daily         []domain.DailyAttemptStat
	repeats       int64
	players       int64
	sessions      int64
	multiplePlays int64

	sinceSeen time.Time
}

func (f *fakeAnalyticsStats) DailyAttempts(_ context.Context, _ string, since time.Time) ([]domain.DailyAttemptStat, error) {
	f.sinceSeen = since

	return f.daily, nil
}

func (f *fakeAnalyticsStats) CountRepeatIdentities(_ context.Context, _ string, _ time.Time) (int64, error) {
	return f.repeats, nil
}

func (f *fakeAnalyticsStats) Totals(_ context.Context, _ string) (int64, int64, error) {
	return f.players, f.sessions, nil
}

func (f *fakeAnalyticsStats) CountMultiplePlays(_ context.Context, _ string) (int64, error) {
	return f.multiplePlays, nil
}

type fakeAnalyticsPolicies struct {
	policy domain.ValidationPolicy
}

func (f *fakeAnalyticsPolicies) FindByDisplayID(_ context.Context, _ string) (domain.ValidationPolicy, error) {
	return f.policy, nil
}

func setupAnalyticsService(stats *fakeAnalyticsStats, policy domain.ValidationPolicy) *AnalyticsService {
	displays := &fakeOutcomeDisplays{
		displays: map[string]domain.DisplayInstance{
			"lobby_1": {ID: "lobby_1", IsActive: true},
		},
	}

	return NewAnalyticsService(stats, &fakeAnalyticsPolicies{policy: policy}, displays)
}

func TestAnalyticsService_DuplicateAttempts(t *testing.T) {
	stats := &fakeAnalyticsStats{
		daily: []domain.DailyAttemptStat{
			{Date: "2026-08-31", TotalAttempts: 12, UniqueEmails: 10, UniquePhones: 9},
			{Date: "2026-08-30", TotalAttempts: 7, UniqueEmails: 7, UniquePhones: 7},
		},
		repeats: 3,
	}
	svc := setupAnalyticsService(stats, domain.ValidationPolicy{})
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	report, err := svc.DuplicateAttempts(context.Background(), "lobby_1", 7)

	require.NoError(t, err)
	assert.Equal(t, stats.daily, report.DailyStats)
	assert.Equal(t, int64(3), report.BlockedDuplicates)
	assert.Equal(t, 7, report.PeriodDays)
	assert.Equal(t, now.AddDate(0, 0, -7), stats.sinceSeen)
}

func TestAnalyticsService_DuplicateAttemptsDefaultPeriod(t *testing.T) {
	stats := &fakeAnalyticsStats{}
	svc := setupAnalyticsService(stats, domain.ValidationPolicy{})

	report, err := svc.DuplicateAttempts(context.Background(), "lobby_1", 0)

	require.NoError(t, err)
	assert.Equal(t, 30, report.PeriodDays)
}

func TestAnalyticsService_DuplicateAttemptsRejectsNegativePeriod(t *testing.T) {
	svc := setupAnalyticsService(&fakeAnalyticsStats{}, domain.ValidationPolicy{})

	_, err := svc.DuplicateAttempts(context.Background(), "lobby_1", -1)

	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestAnalyticsService_DuplicateAttemptsUnknownDisplay(t *testing.T) {
	svc := setupAnalyticsService(&fakeAnalyticsStats{}, domain.ValidationPolicy{})

	_, err := svc.DuplicateAttempts(context.Background(), "nope", 7)

	assert.ErrorIs(t, err, ErrDisplayNotFound)
}

func TestAnalyticsService_ValidationReport(t *testing.T) {
	policy := domain.ValidationPolicy{DisplayID: "lobby_1", AllowMultiplePlays: true}
	stats := &fakeAnalyticsStats{players: 120, sessions: 150, multiplePlays: 18}
	svc := setupAnalyticsService(stats, policy)

	report, err := svc.ValidationReport(context.Background(), "lobby_1")

	require.NoError(t, err)
	assert.Equal(t, policy, report.Policy)
	assert.Equal(t, int64(120), report.TotalPlayers)
	assert.Equal(t, int64(150), report.TotalSessions)
	assert.Equal(t, int64(18), report.MultiplePlays)
}

func TestAnalyticsService_ValidationReportUnknownDisplay(t *testing.T) {
	svc := setupAnalyticsService(&fakeAnalyticsStats{}, domain.ValidationPolicy{})

	_, err := svc.ValidationReport(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrDisplayNotFound)
}

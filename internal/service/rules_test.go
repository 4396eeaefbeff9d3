package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

type fakeRuleSessions struct {
	latestAny       *domain.Session
	latestCompleted *domain.Session
	completedCount  int64

	gotDisplayIDs []string
}

func (f *fakeRuleSessions) FindLatestMatch(_ context.Context, displayIDs []string, _, _ string, statuses []string) (domain.Session, error) {
	f.gotDisplayIDs = displayIDs

	latest := f.latestAny
	if len(statuses) == 1 && statuses[0] == domain.SessionCompleted {
		latest = f.latestCompleted
	}
	if latest == nil {
		return domain.Session{}, repository.ErrSessionNotFound
	}

	return *latest, nil
}

func (f *fakeRuleSessions) CountCompletedMatches(_ context.Context, _ []string, _, _ string) (int64, error) {
	return f.completedCount, nil
}

type fakeRulePolicies struct {
	policy domain.ValidationPolicy
}

func (f *fakeRulePolicies) FindByDisplayID(_ context.Context, displayID string) (domain.ValidationPolicy, error) {
	policy := f.policy
	policy.DisplayID = displayID

	return policy, nil
}

func intPtr(v int) *int {
	return &v
}

func newTestRuleEngine(sessions *fakeRuleSessions, policy domain.ValidationPolicy, now time.Time) *RuleEngine {
	engine := NewRuleEngine(sessions, &fakeRulePolicies{policy: policy})
	engine.now = func() time.Time { return now }

	return engine
}

func TestRuleEngine_Check_FirstPlayIsEligible(t *testing.T) {
	engine := newTestRuleEngine(&fakeRuleSessions{}, domain.DefaultPolicy("lobby_1"), time.Now())

	eligibility, err := engine.Check(context.Background(), "lobby_1", "a@example.com", "5551234567")

	require.NoError(t, err)
	assert.True(t, eligibility.Eligible)
	assert.Empty(t, eligibility.Reason)
}

func TestRuleEngine_Check_SinglePlayPolicyRejectsRepeat(t *testing.T) {
	sessions := &fakeRuleSessions{
		latestAny: &domain.Session{ID: "s1", Status: domain.SessionCompleted},
	}
	engine := newTestRuleEngine(sessions, domain.DefaultPolicy("lobby_1"), time.Now())

	eligibility, err := engine.Check(context.Background(), "lobby_1", "a@example.com", "5551234567")

	require.NoError(t, err)
	assert.False(t, eligibility.Eligible)
	assert.Equal(t, "You have already played on this display.", eligibility.Reason)
}

func TestRuleEngine_Check_PendingSessionAlsoBlocks(t *testing.T) {
	sessions := &fakeRuleSessions{
		latestAny: &domain.Session{ID: "s1", Status: domain.SessionPending},
	}
	engine := newTestRuleEngine(sessions, domain.DefaultPolicy("lobby_1"), time.Now())

	eligibility, err := engine.Check(context.Background(), "lobby_1", "a@example.com", "5551234567")

	require.NoError(t, err)
	assert.False(t, eligibility.Eligible)
}

func TestRuleEngine_Check_TimeWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	policy := domain.ValidationPolicy{
		AllowMultiplePlays:   true,
		AllowRetryOnNegative: true,
		TimeWindowHours:      intPtr(24),
	}

	tests := []struct {
		name           string
		playedAt       time.Time
		eligible       bool
		expectedReason string
	}{
		{
			name:           "one hour ago",
			playedAt:       now.Add(-time.Hour),
			eligible:       false,
			expectedReason: "You have already played. Try again in 23 hours.",
		},
		{
			name:     "exactly at the window boundary",
			playedAt: now.Add(-24 * time.Hour),
			eligible: true,
		},
		{
			name:     "well past the window",
			playedAt: now.Add(-48 * time.Hour),
			eligible: true,
		},
		{
			name:           "one minute short of the boundary",
			playedAt:       now.Add(-24*time.Hour + time.Minute),
			eligible:       false,
			expectedReason: "You have already played. Try again in 1 minute.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeRuleSessions{
				latestAny: &domain.Session{
					ID:        "s1",
					Status:    domain.SessionCompleted,
					CreatedAt: tt.playedAt,
				},
			}
			engine := newTestRuleEngine(sessions, policy, now)

			eligibility, err := engine.Check(context.Background(), "lobby_1", "a@example.com", "5551234567")

			require.NoError(t, err)
			assert.Equal(t, tt.eligible, eligibility.Eligible)
			if tt.expectedReason != "" {
				assert.Equal(t, tt.expectedReason, eligibility.Reason)
			}
		})
	}
}

func TestRuleEngine_Check_PlayCaps(t *testing.T) {
	now := time.Now()
	policy := domain.ValidationPolicy{
		AllowMultiplePlays:   true,
		AllowRetryOnNegative: true,
		MaxPlaysPerEmail:     intPtr(3),
		MaxPlaysPerPhone:     intPtr(5),
	}

	tests := []struct {
		name     string
		count    int64
		eligible bool
	}{
		{name: "below both caps", count: 2, eligible: true},
		{name: "between the caps uses the larger", count: 4, eligible: true},
		{name: "at the larger cap", count: 5, eligible: false},
		{name: "above the larger cap", count: 9, eligible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeRuleSessions{
				latestAny: &domain.Session{
					ID:        "s1",
					Status:    domain.SessionCompleted,
					CreatedAt: now.Add(-72 * time.Hour),
				},
				completedCount: tt.count,
			}
			engine := newTestRuleEngine(sessions, policy, now)

			eligibility, err := engine.Check(context.Background(), "lobby_1", "a@example.com", "5551234567")

			require.NoError(t, err)
			assert.Equal(t, tt.eligible, eligibility.Eligible)
			if !tt.eligible {
				assert.Equal(t, "You have reached the maximum number of plays.", eligibility.Reason)
			}
		})
	}
}

func TestRuleEngine_Check_RetryOnNegative(t *testing.T) {
	now := time.Now()
	past := now.Add(-72 * time.Hour)
	policy := domain.ValidationPolicy{
		AllowMultiplePlays: true,
	}

	tests := []struct {
		name     string
		outcome  *domain.Outcome
		eligible bool
	}{
		{
			name:     "previous win blocks",
			outcome:  &domain.Outcome{ID: "o1", Label: "Grand Prize", IsNegative: false},
			eligible: false,
		},
		{
			name:     "previous negative outcome allows retry",
			outcome:  &domain.Outcome{ID: "o2", Label: "Better Luck", IsNegative: true},
			eligible: true,
		},
		{
			name:     "legacy try-again label allows retry despite non-negative flag",
			outcome:  &domain.Outcome{ID: "o3", Label: "Try Again", IsNegative: false},
			eligible: true,
		},
		{
			name:     "unresolvable outcome allows retry",
			outcome:  nil,
			eligible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completed := &domain.Session{
				ID:        "s1",
				Status:    domain.SessionCompleted,
				CreatedAt: past,
				Outcome:   tt.outcome,
			}
			sessions := &fakeRuleSessions{
				latestAny:       completed,
				latestCompleted: completed,
			}
			engine := newTestRuleEngine(sessions, policy, now)

			eligibility, err := engine.Check(context.Background(), "lobby_1", "a@example.com", "5551234567")

			require.NoError(t, err)
			assert.Equal(t, tt.eligible, eligibility.Eligible)
			if !tt.eligible {
				assert.Equal(t, "You have already received an outcome.", eligibility.Reason)
			}
		})
	}
}

func TestRuleEngine_Check_CrossDisplayScope(t *testing.T) {
	policy := domain.ValidationPolicy{
		AllowMultiplePlays:   true,
		AllowRetryOnNegative: true,
		CheckAcrossDisplays:  true,
		CheckDisplayIDs:      "lobby_2, lobby_3, lobby_1",
	}
	sessions := &fakeRuleSessions{}
	engine := newTestRuleEngine(sessions, policy, time.Now())

	_, err := engine.Check(context.Background(), "lobby_1", "a@example.com", "5551234567")

	require.NoError(t, err)
	assert.Equal(t, []string{"lobby_1", "lobby_2", "lobby_3"}, sessions.gotDisplayIDs)
}

func TestHumanizeRemaining(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{30 * time.Second, "1 minute"},
		{time.Minute, "1 minute"},
		{61 * time.Second, "2 minutes"},
		{59 * time.Minute, "59 minutes"},
		{time.Hour, "60 minutes"},
		{time.Hour + time.Minute, "2 hours"},
		{23 * time.Hour, "23 hours"},
		{25 * time.Hour, "2 days"},
		{6 * 24 * time.Hour, "6 days"},
		{8 * 24 * time.Hour, "2 weeks"},
		{45 * 24 * time.Hour, "2 months"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, humanizeRemaining(tt.d), tt.d.String())
	}
}

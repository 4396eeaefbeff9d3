package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

// retryLabel is a legacy carve-out: outcomes carrying this exact label are
// treated as non-terminal for retry purposes, like negative outcomes.
const retryLabel = "Try Again"

// Eligibility is the rule engine's verdict. Reason is user-facing and only
// set for ineligible results.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

type RuleSessionRepository interface {
	FindLatestMatch(ctx context.Context, displayIDs []string, email, phone string, statuses []string) (domain.Session, error)
	CountCompletedMatches(ctx context.Context, displayIDs []string, email, phone string) (int64, error)
}

type RulePolicyRepository interface {
	FindByDisplayID(ctx context.Context, displayID string) (domain.ValidationPolicy, error)
}

// RuleEngine decides whether a normalized identity may start a new attempt
// on a display. The policy is a short-circuit decision tree: the first
// failing rule determines the rejection reason.
type RuleEngine struct {
	sessions RuleSessionRepository
	policies RulePolicyRepository
	now      func() time.Time
}

func NewRuleEngine(sessions RuleSessionRepository, policies RulePolicyRepository) *RuleEngine {
	return &RuleEngine{
		sessions: sessions,
		policies: policies,
		now:      time.Now,
	}
}

func (e *RuleEngine) Check(ctx context.Context, displayID, emailNormalized, phoneNormalized string) (Eligibility, error) {
	policy, err := e.policies.FindByDisplayID(ctx, displayID)
	if err != nil {
		return Eligibility{}, fmt.Errorf("e.policies.FindByDisplayID -> %w", err)
	}

	displayIDs := policy.DisplayIDsToCheck()

	latest, err := e.sessions.FindLatestMatch(ctx, displayIDs, emailNormalized, phoneNormalized,
		[]string{domain.SessionPending, domain.SessionPlaying, domain.SessionCompleted})
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return Eligibility{Eligible: true}, nil
		}

		return Eligibility{}, fmt.Errorf("e.sessions.FindLatestMatch -> %w", err)
	}

	if !policy.AllowMultiplePlays {
		return Eligibility{Reason: "You have already played on this display."}, nil
	}

	if policy.TimeWindowHours != nil {
		window := time.Duration(*policy.TimeWindowHours) * time.Hour
		elapsed := e.now().Sub(latest.CreatedAt)
		// Exclusive boundary: elapsed exactly equal to the window is allowed.
		if elapsed < window {
			remaining := window - elapsed
			return Eligibility{
				Reason: fmt.Sprintf("You have already played. Try again in %s.", humanizeRemaining(remaining)),
			}, nil
		}
	}

	if policy.MaxPlaysPerEmail != nil || policy.MaxPlaysPerPhone != nil {
		limit := effectiveCap(policy.MaxPlaysPerEmail, policy.MaxPlaysPerPhone)
		count, err := e.sessions.CountCompletedMatches(ctx, displayIDs, emailNormalized, phoneNormalized)
		if err != nil {
			return Eligibility{}, fmt.Errorf("e.sessions.CountCompletedMatches -> %w", err)
		}
		if count >= int64(limit) {
			return Eligibility{Reason: "You have reached the maximum number of plays."}, nil
		}
	}

	if !policy.AllowRetryOnNegative {
		completed, err := e.sessions.FindLatestMatch(ctx, displayIDs, emailNormalized, phoneNormalized,
			[]string{domain.SessionCompleted})
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return Eligibility{Eligible: true}, nil
			}

			return Eligibility{}, fmt.Errorf("e.sessions.FindLatestMatch -> %w", err)
		}

		if completed.Outcome != nil && !completed.Outcome.IsNegative && completed.Outcome.Label != retryLabel {
			return Eligibility{Reason: "You have already received an outcome."}, nil
		}
	}

	return Eligibility{Eligible: true}, nil
}

// effectiveCap takes the larger of the two configured limits; callers ensure
// at least one is set.
func effectiveCap(perEmail, perPhone *int) int {
	switch {
	case perEmail == nil:
		return *perPhone
	case perPhone == nil:
		return *perEmail
	case *perEmail > *perPhone:
		return *perEmail
	default:
		return *perPhone
	}
}

// humanizeRemaining renders a wait in the largest sensible unit, rounded up
// so a player never sees "try again" before the window has elapsed.
func humanizeRemaining(d time.Duration) string {
	ceilDiv := func(d, unit time.Duration) int64 {
		return int64((d + unit - 1) / unit)
	}

	plural := func(n int64, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	const (
		day   = 24 * time.Hour
		week  = 7 * day
		month = 30 * day
	)

	switch {
	case d <= time.Hour:
		return plural(ceilDiv(d, time.Minute), "minute")
	case d <= day:
		return plural(ceilDiv(d, time.Hour), "hour")
	case d <= week:
		return plural(ceilDiv(d, day), "day")
	case d <= month:
		return plural(ceilDiv(d, week), "week")
	default:
		return plural(ceilDiv(d, month), "month")
	}
}

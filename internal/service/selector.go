package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/promosign/spin-api/internal/config"
	"github.com/promosign/spin-api/internal/domain"
)

var (
	ErrNoOutcomesAvailable      = errors.New("no active outcomes found")
	ErrNoEligibleOutcomes       = errors.New("no eligible outcomes available")
	ErrZeroTotalWeight          = errors.New("total outcome weight is zero")
	ErrInstanceGameLimitReached = errors.New("maximum number of games reached for this instance")
)

type SelectorOutcomeRepository interface {
	FindActiveByDisplay(ctx context.Context, displayID string) ([]domain.Outcome, error)
}

type SelectorSessionRepository interface {
	CountByDisplay(ctx context.Context, displayID string) (int64, error)
	CountByOutcome(ctx context.Context, displayID string) (map[string]int64, error)
}

// OutcomeSelector picks a weighted-random outcome among a display's active
// prizes, honoring the optional occurrence and per-instance game caps.
type OutcomeSelector struct {
	outcomes SelectorOutcomeRepository
	sessions SelectorSessionRepository
	conf     *config.GameConfig
	randFn   func() float64
}

func NewOutcomeSelector(outcomes SelectorOutcomeRepository, sessions SelectorSessionRepository, conf *config.GameConfig) *OutcomeSelector {
	return &OutcomeSelector{
		outcomes: outcomes,
		sessions: sessions,
		conf:     conf,
		randFn:   rand.Float64,
	}
}

// WithRand swaps the random source, for reproducible draws in tests.
func (s *OutcomeSelector) WithRand(randFn func() float64) *OutcomeSelector {
	s.randFn = randFn
	return s
}

func (s *OutcomeSelector) Select(ctx context.Context, displayID string) (domain.Outcome, error) {
	if s.conf.MaxGamesPerInstance > 0 {
		total, err := s.sessions.CountByDisplay(ctx, displayID)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("s.sessions.CountByDisplay -> %w", err)
		}
		if total >= int64(s.conf.MaxGamesPerInstance) {
			return domain.Outcome{}, ErrInstanceGameLimitReached
		}
	}

	outcomes, err := s.outcomes.FindActiveByDisplay(ctx, displayID)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("s.outcomes.FindActiveByDisplay -> %w", err)
	}
	if len(outcomes) == 0 {
		return domain.Outcome{}, ErrNoOutcomesAvailable
	}

	eligible := outcomes
	if s.conf.MaxOutcomeOccurrences > 0 {
		occurrences, err := s.sessions.CountByOutcome(ctx, displayID)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("s.sessions.CountByOutcome -> %w", err)
		}

		eligible = make([]domain.Outcome, 0, len(outcomes))
		for _, o := range outcomes {
			if occurrences[o.ID] < int64(s.conf.MaxOutcomeOccurrences) {
				eligible = append(eligible, o)
			}
		}
	}

	filtered := eligible[:0:0]
	for _, o := range eligible {
		if o.ProbabilityWeight > 0 {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return domain.Outcome{}, ErrNoEligibleOutcomes
	}

	// Fixed walk order so a given weight configuration always maps to the
	// same probability intervals, independent of store ordering.
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].ProbabilityWeight != filtered[j].ProbabilityWeight {
			return filtered[i].ProbabilityWeight > filtered[j].ProbabilityWeight
		}
		return filtered[i].ID < filtered[j].ID
	})

	var total int
	for _, o := range filtered {
		total += o.ProbabilityWeight
	}
	if total == 0 {
		return domain.Outcome{}, ErrZeroTotalWeight
	}

	r := s.randFn() * float64(total)

	var cumulative float64
	for _, o := range filtered {
		cumulative += float64(o.ProbabilityWeight)
		if r < cumulative {
			return o, nil
		}
	}

	// r landed on the upper bound through float rounding.
	return filtered[len(filtered)-1], nil
}

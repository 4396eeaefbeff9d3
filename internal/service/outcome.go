package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

var (
	ErrOutcomeNotFound     = repository.ErrOutcomeNotFound
	ErrInvalidWeightUpdate = errors.New("invalid weight update")
)

type OutcomeStoreRepository interface {
	Create(ctx context.Context, outcome domain.Outcome) (domain.Outcome, error)
	FindByID(ctx context.Context, id string) (domain.Outcome, error)
	FindByDisplay(ctx context.Context, displayID string) ([]domain.Outcome, error)
	FindActiveByDisplay(ctx context.Context, displayID string) ([]domain.Outcome, error)
	Update(ctx context.Context, id string, fields map[string]any) (domain.Outcome, error)
	UpdateWeights(ctx context.Context, updates []domain.OutcomeWeightUpdate) ([]domain.Outcome, error)
	Delete(ctx context.Context, id string) error
}

type CreateOutcomeInput struct {
	DisplayID         string
	Label             string
	ProbabilityWeight int
	IsNegative        bool
}

type UpdateOutcomeInput struct {
	Label             *string
	ProbabilityWeight *int
	IsActive          *bool
	IsNegative        *bool
}

// OutcomeService manages the wheel segments of a display.
type OutcomeService struct {
	outcomes OutcomeStoreRepository
	displays DisplayStoreRepository
}

func NewOutcomeService(outcomes OutcomeStoreRepository, displays DisplayStoreRepository) *OutcomeService {
	return &OutcomeService{
		outcomes: outcomes,
		displays: displays,
	}
}

func (s *OutcomeService) Create(ctx context.Context, input CreateOutcomeInput) (domain.Outcome, error) {
	if _, err := s.displays.FindByID(ctx, input.DisplayID); err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.Outcome{}, ErrDisplayNotFound
		}

		return domain.Outcome{}, fmt.Errorf("s.displays.FindByID -> %w", err)
	}

	outcome, err := s.outcomes.Create(ctx, domain.Outcome{
		DisplayID:         input.DisplayID,
		Label:             input.Label,
		ProbabilityWeight: input.ProbabilityWeight,
		IsActive:          true,
		IsNegative:        input.IsNegative,
	})
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("s.outcomes.Create -> %w", err)
	}

	return outcome, nil
}

func (s *OutcomeService) ListByDisplay(ctx context.Context, displayID string) ([]domain.Outcome, error) {
	outcomes, err := s.outcomes.FindByDisplay(ctx, displayID)
	if err != nil {
		return nil, fmt.Errorf("s.outcomes.FindByDisplay -> %w", err)
	}

	return outcomes, nil
}

func (s *OutcomeService) Update(ctx context.Context, id string, input UpdateOutcomeInput) (domain.Outcome, error) {
	fields := map[string]any{}
	if input.Label != nil {
		fields["label"] = *input.Label
	}
	if input.ProbabilityWeight != nil {
		fields["probability_weight"] = *input.ProbabilityWeight
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if input.IsNegative != nil {
		fields["is_negative"] = *input.IsNegative
	}

	if len(fields) == 0 {
		outcome, err := s.outcomes.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrOutcomeNotFound) {
				return domain.Outcome{}, ErrOutcomeNotFound
			}

			return domain.Outcome{}, fmt.Errorf("s.outcomes.FindByID -> %w", err)
		}

		return outcome, nil
	}

	outcome, err := s.outcomes.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrOutcomeNotFound) {
			return domain.Outcome{}, ErrOutcomeNotFound
		}

		return domain.Outcome{}, fmt.Errorf("s.outcomes.Update -> %w", err)
	}

	return outcome, nil
}

// BulkUpdateWeights rewrites the weights of several outcomes atomically. One
// unknown id rolls back the whole batch.
func (s *OutcomeService) BulkUpdateWeights(ctx context.Context, updates []domain.OutcomeWeightUpdate) ([]domain.Outcome, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: at least one outcome is required", ErrInvalidWeightUpdate)
	}
	for _, u := range updates {
		if u.OutcomeID == "" {
			return nil, fmt.Errorf("%w: each outcome must have an id", ErrInvalidWeightUpdate)
		}
		if u.Weight < 0 {
			return nil, fmt.Errorf("%w: weight for outcome %s must be non-negative", ErrInvalidWeightUpdate, u.OutcomeID)
		}
	}

	updated, err := s.outcomes.UpdateWeights(ctx, updates)
	if err != nil {
		if errors.Is(err, repository.ErrOutcomeNotFound) {
			return nil, ErrOutcomeNotFound
		}

		return nil, fmt.Errorf("s.outcomes.UpdateWeights -> %w", err)
	}

	return updated, nil
}

// WeightStats reports each active outcome's share of the wheel as a
// percentage of the total weight.
func (s *OutcomeService) WeightStats(ctx context.Context, displayID string) (domain.WeightStatsReport, error) {
	if _, err := s.displays.FindByID(ctx, displayID); err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.WeightStatsReport{}, ErrDisplayNotFound
		}

		return domain.WeightStatsReport{}, fmt.Errorf("s.displays.FindByID -> %w", err)
	}

	outcomes, err := s.outcomes.FindActiveByDisplay(ctx, displayID)
	if err != nil {
		return domain.WeightStatsReport{}, fmt.Errorf("s.outcomes.FindActiveByDisplay -> %w", err)
	}

	total := 0
	for _, o := range outcomes {
		total += o.ProbabilityWeight
	}

	stats := make([]domain.OutcomeWeightStat, 0, len(outcomes))
	for _, o := range outcomes {
		var pct float64
		if total > 0 {
			pct = math.Round(float64(o.ProbabilityWeight)/float64(total)*10000) / 100
		}
		stats = append(stats, domain.OutcomeWeightStat{
			ID:         o.ID,
			Label:      o.Label,
			Weight:     o.ProbabilityWeight,
			Percentage: pct,
		})
	}

	return domain.WeightStatsReport{
		Outcomes:    stats,
		TotalWeight: total,
	}, nil
}

func (s *OutcomeService) Delete(ctx context.Context, id string) error {
	if err := s.outcomes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOutcomeNotFound) {
			return ErrOutcomeNotFound
		}

		return fmt.Errorf("s.outcomes.Delete -> %w", err)
	}

	return nil
}

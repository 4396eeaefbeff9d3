package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository/dao"
)

var ErrOutcomeNotFound = dao.ErrOutcomeNotFound

type OutcomeDAO interface {
	Insert(ctx context.Context, outcome dao.Outcome) (dao.Outcome, error)
	FindByID(ctx context.Context, id string) (dao.Outcome, error)
	FindActiveByDisplay(ctx context.Context, displayID string) ([]dao.Outcome, error)
	FindByDisplay(ctx context.Context, displayID string) ([]dao.Outcome, error)
	Update(ctx context.Context, id string, fields map[string]any) (dao.Outcome, error)
	UpdateWeights(ctx context.Context, changes []dao.WeightChange) ([]dao.Outcome, error)
	Delete(ctx context.Context, id string) error
}

type OutcomeRepository struct {
	dao OutcomeDAO
}

func NewOutcomeRepository(dao OutcomeDAO) *OutcomeRepository {
	return &OutcomeRepository{
		dao: dao,
	}
}

func (r *OutcomeRepository) Create(ctx context.Context, outcome domain.Outcome) (domain.Outcome, error) {
	created, err := r.dao.Insert(ctx, dao.Outcome{
		DisplayID:         outcome.DisplayID,
		Label:             outcome.Label,
		ProbabilityWeight: outcome.ProbabilityWeight,
		IsActive:          outcome.IsActive,
		IsNegative:        outcome.IsNegative,
	})
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return outcomeDaoToDomain(created), nil
}

func (r *OutcomeRepository) FindByID(ctx context.Context, id string) (domain.Outcome, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return outcomeDaoToDomain(found), nil
}

func (r *OutcomeRepository) FindActiveByDisplay(ctx context.Context, displayID string) ([]domain.Outcome, error) {
	found, err := r.dao.FindActiveByDisplay(ctx, displayID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActiveByDisplay -> %w", err)
	}

	return outcomesDaoToDomain(found), nil
}

func (r *OutcomeRepository) FindByDisplay(ctx context.Context, displayID string) ([]domain.Outcome, error) {
	found, err := r.dao.FindByDisplay(ctx, displayID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByDisplay -> %w", err)
	}

	return outcomesDaoToDomain(found), nil
}

func (r *OutcomeRepository) UpdateWeights(ctx context.Context, updates []domain.OutcomeWeightUpdate) ([]domain.Outcome, error) {
	changes := make([]dao.WeightChange, 0, len(updates))
	for _, u := range updates {
		changes = append(changes, dao.WeightChange{ID: u.OutcomeID, Weight: u.Weight})
	}

	updated, err := r.dao.UpdateWeights(ctx, changes)
	if err != nil {
		if errors.Is(err, dao.ErrOutcomeNotFound) {
			return nil, ErrOutcomeNotFound
		}

		return nil, fmt.Errorf("r.dao.UpdateWeights -> %w", err)
	}

	return outcomesDaoToDomain(updated), nil
}

func (r *OutcomeRepository) Update(ctx context.Context, id string, fields map[string]any) (domain.Outcome, error) {
	updated, err := r.dao.Update(ctx, id, fields)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return outcomeDaoToDomain(updated), nil
}

func (r *OutcomeRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func outcomeDaoToDomain(o dao.Outcome) domain.Outcome {
	return domain.Outcome{
		ID:                o.ID,
		DisplayID:         o.DisplayID,
		Label:             o.Label,
		ProbabilityWeight: o.ProbabilityWeight,
		IsActive:          o.IsActive,
		IsNegative:        o.IsNegative,
		CreatedAt:         o.CreatedAt,
	}
}

func outcomesDaoToDomain(outcomes []dao.Outcome) []domain.Outcome {
	result := make([]domain.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		result = append(result, outcomeDaoToDomain(o))
	}

	return result
}

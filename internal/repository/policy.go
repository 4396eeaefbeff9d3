package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository/dao"
)

var ErrPolicyNotFound = dao.ErrPolicyNotFound

type PolicyDAO interface {
	FindByDisplayID(ctx context.Context, displayID string) (dao.ValidationPolicy, error)
	Upsert(ctx context.Context, policy dao.ValidationPolicy) (dao.ValidationPolicy, error)
}

type PolicyRepository struct {
	dao PolicyDAO
}

func NewPolicyRepository(dao PolicyDAO) *PolicyRepository {
	return &PolicyRepository{
		dao: dao,
	}
}

// FindByDisplayID returns the stored policy, or the "one play ever" default
// when the display has none.
func (r *PolicyRepository) FindByDisplayID(ctx context.Context, displayID string) (domain.ValidationPolicy, error) {
	found, err := r.dao.FindByDisplayID(ctx, displayID)
	if err != nil {
		if errors.Is(err, dao.ErrPolicyNotFound) {
			return domain.DefaultPolicy(displayID), nil
		}

		return domain.ValidationPolicy{}, fmt.Errorf("r.dao.FindByDisplayID -> %w", err)
	}

	return policyDaoToDomain(found), nil
}

func (r *PolicyRepository) Upsert(ctx context.Context, policy domain.ValidationPolicy) (domain.ValidationPolicy, error) {
	saved, err := r.dao.Upsert(ctx, dao.ValidationPolicy{
		DisplayID:            policy.DisplayID,
		AllowMultiplePlays:   policy.AllowMultiplePlays,
		MaxPlaysPerEmail:     policy.MaxPlaysPerEmail,
		MaxPlaysPerPhone:     policy.MaxPlaysPerPhone,
		TimeWindowHours:      policy.TimeWindowHours,
		AllowRetryOnNegative: policy.AllowRetryOnNegative,
		CheckAcrossDisplays:  policy.CheckAcrossDisplays,
		CheckDisplayIDs:      policy.CheckDisplayIDs,
	})
	if err != nil {
		return domain.ValidationPolicy{}, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return policyDaoToDomain(saved), nil
}

func policyDaoToDomain(p dao.ValidationPolicy) domain.ValidationPolicy {
	return domain.ValidationPolicy{
		DisplayID:            p.DisplayID,
		AllowMultiplePlays:   p.AllowMultiplePlays,
		MaxPlaysPerEmail:     p.MaxPlaysPerEmail,
		MaxPlaysPerPhone:     p.MaxPlaysPerPhone,
		TimeWindowHours:      p.TimeWindowHours,
		AllowRetryOnNegative: p.AllowRetryOnNegative,
		CheckAcrossDisplays:  p.CheckAcrossDisplays,
		CheckDisplayIDs:      p.CheckDisplayIDs,
		UpdatedAt:            p.UpdatedAt,
	}
}

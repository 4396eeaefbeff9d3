package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

var ErrInvalidPolicy = errors.New("invalid policy")

type PolicyStoreRepository interface {
	FindByDisplayID(ctx context.Context, displayID string) (domain.ValidationPolicy, error)
	Upsert(ctx context.Context, policy domain.ValidationPolicy) (domain.ValidationPolicy, error)
}

type UpdatePolicyInput struct {
	AllowMultiplePlays   bool
	MaxPlaysPerEmail     *int
	MaxPlaysPerPhone     *int
	TimeWindowHours      *int
	AllowRetryOnNegative bool
	CheckAcrossDisplays  bool
	CheckDisplayIDs      string
}

// PolicyService manages the per-display anti-abuse configuration.
type PolicyService struct {
	policies PolicyStoreRepository
	displays DisplayStoreRepository
}

func NewPolicyService(policies PolicyStoreRepository, displays DisplayStoreRepository) *PolicyService {
	return &PolicyService{
		policies: policies,
		displays: displays,
	}
}

// Get returns the stored policy, or the "one play ever" default when none is
// configured.
func (s *PolicyService) Get(ctx context.Context, displayID string) (domain.ValidationPolicy, error) {
	if _, err := s.displays.FindByID(ctx, displayID); err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.ValidationPolicy{}, ErrDisplayNotFound
		}

		return domain.ValidationPolicy{}, fmt.Errorf("s.displays.FindByID -> %w", err)
	}

	policy, err := s.policies.FindByDisplayID(ctx, displayID)
	if err != nil {
		return domain.ValidationPolicy{}, fmt.Errorf("s.policies.FindByDisplayID -> %w", err)
	}

	return policy, nil
}

// Update replaces the display's policy wholesale. Caps must be positive when
// set, and every cross-display id must name an existing display.
func (s *PolicyService) Update(ctx context.Context, displayID string, input UpdatePolicyInput) (domain.ValidationPolicy, error) {
	if _, err := s.displays.FindByID(ctx, displayID); err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.ValidationPolicy{}, ErrDisplayNotFound
		}

		return domain.ValidationPolicy{}, fmt.Errorf("s.displays.FindByID -> %w", err)
	}

	if err := validateCap(input.MaxPlaysPerEmail); err != nil {
		return domain.ValidationPolicy{}, err
	}
	if err := validateCap(input.MaxPlaysPerPhone); err != nil {
		return domain.ValidationPolicy{}, err
	}
	if err := validateCap(input.TimeWindowHours); err != nil {
		return domain.ValidationPolicy{}, err
	}

	if input.CheckAcrossDisplays {
		for _, raw := range strings.Split(input.CheckDisplayIDs, ",") {
			id := strings.TrimSpace(raw)
			if id == "" || id == displayID {
				continue
			}
			if _, err := s.displays.FindByID(ctx, id); err != nil {
				if errors.Is(err, repository.ErrDisplayNotFound) {
					return domain.ValidationPolicy{}, fmt.Errorf("%w: unknown display %q in check list", ErrInvalidPolicy, id)
				}

				return domain.ValidationPolicy{}, fmt.Errorf("s.displays.FindByID -> %w", err)
			}
		}
	}

	policy, err := s.policies.Upsert(ctx, domain.ValidationPolicy{
		DisplayID:            displayID,
		AllowMultiplePlays:   input.AllowMultiplePlays,
		MaxPlaysPerEmail:     input.MaxPlaysPerEmail,
		MaxPlaysPerPhone:     input.MaxPlaysPerPhone,
		TimeWindowHours:      input.TimeWindowHours,
		AllowRetryOnNegative: input.AllowRetryOnNegative,
		CheckAcrossDisplays:  input.CheckAcrossDisplays,
		CheckDisplayIDs:      input.CheckDisplayIDs,
	})
	if err != nil {
		return domain.ValidationPolicy{}, fmt.Errorf("s.policies.Upsert -> %w", err)
	}

	zap.L().Info("policy updated", zap.String("displayID", displayID))

	return policy, nil
}

func validateCap(v *int) error {
	if v != nil && *v < 1 {
		return fmt.Errorf("%w: limits must be at least 1 when set", ErrInvalidPolicy)
	}

	return nil
}

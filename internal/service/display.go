package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

var (
	ErrDisplayExists    = repository.ErrDisplayExists
	ErrInvalidDisplayID = errors.New("display id may only contain letters, digits and underscores")
	ErrInvalidTimezone  = errors.New("unknown timezone")
)

var displayIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// defaultOutcomes seeds every new display with a playable wheel so a
// freshly provisioned kiosk works before any admin tuning.
var defaultOutcomes = []domain.Outcome{
	{Label: "10% Discount", ProbabilityWeight: 30, IsActive: true, IsNegative: false},
	{Label: "Free Item", ProbabilityWeight: 10, IsActive: true, IsNegative: false},
	{Label: "Try Again", ProbabilityWeight: 40, IsActive: true, IsNegative: true},
	{Label: "20% Discount", ProbabilityWeight: 15, IsActive: true, IsNegative: false},
	{Label: "Grand Prize", ProbabilityWeight: 5, IsActive: true, IsNegative: false},
}

type DisplayStoreRepository interface {
	Create(ctx context.Context, display domain.DisplayInstance) (domain.DisplayInstance, error)
	FindByID(ctx context.Context, id string) (domain.DisplayInstance, error)
	FindAll(ctx context.Context) ([]domain.DisplayInstance, error)
	Update(ctx context.Context, id string, fields map[string]any) (domain.DisplayInstance, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (domain.DisplayStats, error)
}

type DisplayOutcomeRepository interface {
	Create(ctx context.Context, outcome domain.Outcome) (domain.Outcome, error)
}

type DisplayBroadcaster interface {
	Broadcast(displayID string, msg DisplayMessage) int
	ConnectionCount(displayID string) int
}

type DisplaySessionRepository interface {
	CountByOutcome(ctx context.Context, displayID string) (map[string]int64, error)
}

type CreateDisplayInput struct {
	ID               string
	LocationName     string
	QRCodeURL        string
	Timezone         string
	LogoURL          string
	BackgroundConfig string
}

type UpdateDisplayInput struct {
	LocationName     *string
	QRCodeURL        *string
	IsActive         *bool
	Timezone         *string
	LogoURL          *string
	BackgroundConfig *string
}

// DisplayService manages kiosk display instances for the admin surface.
type DisplayService struct {
	displays    DisplayStoreRepository
	outcomes    DisplayOutcomeRepository
	sessions    DisplaySessionRepository
	broadcaster DisplayBroadcaster
}

func NewDisplayService(
	displays DisplayStoreRepository,
	outcomes DisplayOutcomeRepository,
	sessions DisplaySessionRepository,
	broadcaster DisplayBroadcaster,
) *DisplayService {
	return &DisplayService{
		displays:    displays,
		outcomes:    outcomes,
		sessions:    sessions,
		broadcaster: broadcaster,
	}
}

// Create provisions a new display and seeds the default outcome set. Seeding
// failures are logged but do not roll back the display: the admin can add
// outcomes by hand.
func (s *DisplayService) Create(ctx context.Context, input CreateDisplayInput) (domain.DisplayInstance, error) {
	if !displayIDPattern.MatchString(input.ID) {
		return domain.DisplayInstance{}, ErrInvalidDisplayID
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = "America/New_York"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return domain.DisplayInstance{}, ErrInvalidTimezone
	}

	display, err := s.displays.Create(ctx, domain.DisplayInstance{
		ID:               input.ID,
		LocationName:     input.LocationName,
		QRCodeURL:        input.QRCodeURL,
		IsActive:         true,
		Timezone:         timezone,
		LogoURL:          input.LogoURL,
		BackgroundConfig: input.BackgroundConfig,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDisplayExists) {
			return domain.DisplayInstance{}, ErrDisplayExists
		}

		return domain.DisplayInstance{}, fmt.Errorf("s.displays.Create -> %w", err)
	}

	for _, outcome := range defaultOutcomes {
		outcome.DisplayID = display.ID
		if _, err := s.outcomes.Create(ctx, outcome); err != nil {
			zap.L().Error("failed to seed default outcome",
				zap.String("displayID", display.ID),
				zap.String("label", outcome.Label),
				zap.Error(err))
		}
	}

	zap.L().Info("display created", zap.String("displayID", display.ID))

	return display, nil
}

func (s *DisplayService) Get(ctx context.Context, id string) (domain.DisplayInstance, error) {
	display, err := s.displays.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.DisplayInstance{}, ErrDisplayNotFound
		}

		return domain.DisplayInstance{}, fmt.Errorf("s.displays.FindByID -> %w", err)
	}

	return display, nil
}

func (s *DisplayService) List(ctx context.Context) ([]domain.DisplayInstance, error) {
	displays, err := s.displays.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.displays.FindAll -> %w", err)
	}

	return displays, nil
}

// Update applies only the provided fields. A background config change is
// pushed to any connected display immediately.
func (s *DisplayService) Update(ctx context.Context, id string, input UpdateDisplayInput) (domain.DisplayInstance, error) {
	fields := map[string]any{}
	if input.LocationName != nil {
		fields["location_name"] = *input.LocationName
	}
	if input.QRCodeURL != nil {
		fields["qr_code_url"] = *input.QRCodeURL
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return domain.DisplayInstance{}, ErrInvalidTimezone
		}
		fields["timezone"] = *input.Timezone
	}
	if input.LogoURL != nil {
		fields["logo_url"] = *input.LogoURL
	}
	if input.BackgroundConfig != nil {
		fields["background_config"] = *input.BackgroundConfig
	}

	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	display, err := s.displays.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.DisplayInstance{}, ErrDisplayNotFound
		}

		return domain.DisplayInstance{}, fmt.Errorf("s.displays.Update -> %w", err)
	}

	if input.BackgroundConfig != nil {
		s.broadcaster.Broadcast(id, DisplayMessage{
			Type:             MsgBackgroundUpdate,
			DisplayID:        id,
			BackgroundConfig: display.BackgroundConfig,
		})
	}

	return display, nil
}

// Delete removes the display and everything hanging off it: outcomes,
// players, sessions and redemptions.
func (s *DisplayService) Delete(ctx context.Context, id string) error {
	if err := s.displays.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return ErrDisplayNotFound
		}

		return fmt.Errorf("s.displays.Delete -> %w", err)
	}

	zap.L().Info("display deleted", zap.String("displayID", id))

	return nil
}

func (s *DisplayService) Stats(ctx context.Context, id string) (domain.DisplayStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.DisplayStats{}, err
	}

	stats, err := s.displays.Stats(ctx, id)
	if err != nil {
		return domain.DisplayStats{}, fmt.Errorf("s.displays.Stats -> %w", err)
	}

	counts, err := s.sessions.CountByOutcome(ctx, id)
	if err != nil {
		return domain.DisplayStats{}, fmt.Errorf("s.sessions.CountByOutcome -> %w", err)
	}

	stats.OutcomeCounts = counts
	stats.ActiveConnections = s.broadcaster.ConnectionCount(id)

	return stats, nil
}

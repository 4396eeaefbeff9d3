package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

const defaultReportDays = 30

var ErrInvalidPeriod = errors.New("period must be at least one day")

type AnalyticsStatsRepository interface {
	DailyAttempts(ctx context.Context, displayID string, since time.Time) ([]domain.DailyAttemptStat, error)
	CountRepeatIdentities(ctx context.Context, displayID string, since time.Time) (int64, error)
	Totals(ctx context.Context, displayID string) (players, sessions int64, err error)
	CountMultiplePlays(ctx context.Context, displayID string) (int64, error)
}

type AnalyticsPolicyRepository interface {
	FindByDisplayID(ctx context.Context, displayID string) (domain.ValidationPolicy, error)
}

// AnalyticsService assembles the admin reports on play traffic and repeat
// attempts.
type AnalyticsService struct {
	stats    AnalyticsStatsRepository
	policies AnalyticsPolicyRepository
	displays DisplayStoreRepository
	now      func() time.Time
}

func NewAnalyticsService(
	stats AnalyticsStatsRepository,
	policies AnalyticsPolicyRepository,
	displays DisplayStoreRepository,
) *AnalyticsService {
	return &AnalyticsService{
		stats:    stats,
		policies: policies,
		displays: displays,
		now:      time.Now,
	}
}

// DuplicateAttempts reports daily traffic and repeat-identity pressure over
// the trailing period. Zero days selects the default 30-day window.
func (s *AnalyticsService) DuplicateAttempts(ctx context.Context, displayID string, days int) (domain.DuplicateAttemptReport, error) {
	if days == 0 {
		days = defaultReportDays
	}
	if days < 1 {
		return domain.DuplicateAttemptReport{}, ErrInvalidPeriod
	}

	if _, err := s.displays.FindByID(ctx, displayID); err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.DuplicateAttemptReport{}, ErrDisplayNotFound
		}

		return domain.DuplicateAttemptReport{}, fmt.Errorf("s.displays.FindByID -> %w", err)
	}

	since := s.now().AddDate(0, 0, -days)

	daily, err := s.stats.DailyAttempts(ctx, displayID, since)
	if err != nil {
		return domain.DuplicateAttemptReport{}, fmt.Errorf("s.stats.DailyAttempts -> %w", err)
	}

	blocked, err := s.stats.CountRepeatIdentities(ctx, displayID, since)
	if err != nil {
		return domain.DuplicateAttemptReport{}, fmt.Errorf("s.stats.CountRepeatIdentities -> %w", err)
	}

	return domain.DuplicateAttemptReport{
		DailyStats:        daily,
		BlockedDuplicates: blocked,
		PeriodDays:        days,
	}, nil
}

// ValidationReport pairs the display's anti-abuse policy with lifetime play
// totals.
func (s *AnalyticsService) ValidationReport(ctx context.Context, displayID string) (domain.ValidationReport, error) {
	if _, err := s.displays.FindByID(ctx, displayID); err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.ValidationReport{}, ErrDisplayNotFound
		}

		return domain.ValidationReport{}, fmt.Errorf("s.displays.FindByID -> %w", err)
	}

	policy, err := s.policies.FindByDisplayID(ctx, displayID)
	if err != nil {
		return domain.ValidationReport{}, fmt.Errorf("s.policies.FindByDisplayID -> %w", err)
	}

	players, sessions, err := s.stats.Totals(ctx, displayID)
	if err != nil {
		return domain.ValidationReport{}, fmt.Errorf("s.stats.Totals -> %w", err)
	}

	multiple, err := s.stats.CountMultiplePlays(ctx, displayID)
	if err != nil {
		return domain.ValidationReport{}, fmt.Errorf("s.stats.CountMultiplePlays -> %w", err)
	}

	return domain.ValidationReport{
		Policy:        policy,
		TotalPlayers:  players,
		TotalSessions: sessions,
		MultiplePlays: multiple,
	}, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository/dao"
)

type AnalyticsDAO interface {
	DailyAttempts(ctx context.Context, displayID string, since time.Time) ([]dao.DailyAttemptRow, error)
	CountRepeatIdentities(ctx context.Context, displayID string, since time.Time) (int64, error)
	Totals(ctx context.Context, displayID string) (players, sessions int64, err error)
	CountMultiplePlays(ctx context.Context, displayID string) (int64, error)
}

type AnalyticsRepository struct {
	dao AnalyticsDAO
}

func NewAnalyticsRepository(analyticsDAO AnalyticsDAO) *AnalyticsRepository {
	return &AnalyticsRepository{
		dao: analyticsDAO,
	}
}

func (r *AnalyticsRepository) DailyAttempts(ctx context.Context, displayID string, since time.Time) ([]domain.DailyAttemptStat, error) {
	rows, err := r.dao.DailyAttempts(ctx, displayID, since)
	if err != nil {
		return nil, fmt.Errorf("r.dao.DailyAttempts -> %w", err)
	}

	stats := make([]domain.DailyAttemptStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, domain.DailyAttemptStat{
			Date:          row.Day.Format("2006-01-02"),
			TotalAttempts: row.TotalAttempts,
			UniqueEmails:  row.UniqueEmails,
			UniquePhones:  row.UniquePhones,
		})
	}

	return stats, nil
}

func (r *AnalyticsRepository) CountRepeatIdentities(ctx context.Context, displayID string, since time.Time) (int64, error) {
	count, err := r.dao.CountRepeatIdentities(ctx, displayID, since)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountRepeatIdentities -> %w", err)
	}

	return count, nil
}

func (r *AnalyticsRepository) Totals(ctx context.Context, displayID string) (players, sessions int64, err error) {
	players, sessions, err = r.dao.Totals(ctx, displayID)
	if err != nil {
		return 0, 0, fmt.Errorf("r.dao.Totals -> %w", err)
	}

	return players, sessions, nil
}

func (r *AnalyticsRepository) CountMultiplePlays(ctx context.Context, displayID string) (int64, error) {
	count, err := r.dao.CountMultiplePlays(ctx, displayID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountMultiplePlays -> %w", err)
	}

	return count, nil
}

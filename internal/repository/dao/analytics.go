package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DailyAttemptRow is one day of aggregated submission traffic.
type DailyAttemptRow struct {
	Day           time.Time
	TotalAttempts int64
	UniqueEmails  int64
	UniquePhones  int64
}

type AnalyticsDAO struct {
	db *gorm.DB
}

func NewAnalyticsDAO(db *gorm.DB) *AnalyticsDAO {
	return &AnalyticsDAO{
		db: db,
	}
}

func (d *AnalyticsDAO) DailyAttempts(ctx context.Context, displayID string, since time.Time) ([]DailyAttemptRow, error) {
	var rows []DailyAttemptRow

	result := d.db.WithContext(ctx).Model(&Session{}).
		Select("DATE(sessions.created_at) AS day, "+
			"COUNT(*) AS total_attempts, "+
			"COUNT(DISTINCT players.email_normalized) AS unique_emails, "+
			"COUNT(DISTINCT players.phone_normalized) AS unique_phones").
		Joins("JOIN players ON players.id = sessions.player_id").
		Where("sessions.display_id = ? AND sessions.created_at >= ?", displayID, since).
		Group("DATE(sessions.created_at)").
		Order("day DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// CountRepeatIdentities counts identities with more than one session on the
// display within the period. A player row is written per submission, so the
// grouping is by normalized identity, not player id.
func (d *AnalyticsDAO) CountRepeatIdentities(ctx context.Context, displayID string, since time.Time) (int64, error) {
	var count int64

	sub := d.db.Model(&Session{}).
		Select("players.email_normalized").
		Joins("JOIN players ON players.id = sessions.player_id").
		Where("sessions.display_id = ? AND sessions.created_at >= ?", displayID, since).
		Group("players.email_normalized, players.phone_normalized").
		Having("COUNT(*) > 1")

	result := d.db.WithContext(ctx).Table("(?) AS duplicates", sub).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *AnalyticsDAO) Totals(ctx context.Context, displayID string) (players, sessions int64, err error) {
	result := d.db.WithContext(ctx).Model(&Player{}).
		Where("display_id = ?", displayID).
		Count(&players)
	if result.Error != nil {
		return 0, 0, result.Error
	}

	result = d.db.WithContext(ctx).Model(&Session{}).
		Where("display_id = ?", displayID).
		Count(&sessions)
	if result.Error != nil {
		return 0, 0, result.Error
	}

	return players, sessions, nil
}

// CountMultiplePlays counts identities that completed more than one game on
// the display.
func (d *AnalyticsDAO) CountMultiplePlays(ctx context.Context, displayID string) (int64, error) {
	var count int64

	sub := d.db.Model(&Session{}).
		Select("players.email_normalized").
		Joins("JOIN players ON players.id = sessions.player_id").
		Where("sessions.display_id = ? AND sessions.status = ?", displayID, "completed").
		Group("players.email_normalized, players.phone_normalized").
		Having("COUNT(*) > 1")

	result := d.db.WithContext(ctx).Table("(?) AS multi", sub).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

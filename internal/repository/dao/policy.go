package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPolicyNotFound = errors.New("validation policy not found")

type ValidationPolicy struct {
	DisplayID            string `gorm:"primaryKey;size:50"`
	AllowMultiplePlays   bool   `gorm:"not null;default:false"`
	MaxPlaysPerEmail     *int
	MaxPlaysPerPhone     *int
	TimeWindowHours      *int
	AllowRetryOnNegative bool   `gorm:"not null;default:false"`
	CheckAcrossDisplays  bool   `gorm:"not null;default:false"`
	CheckDisplayIDs      string `gorm:"column:check_display_ids"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type PolicyDAO struct {
	db *gorm.DB
}

func NewPolicyDAO(db *gorm.DB) *PolicyDAO {
	return &PolicyDAO{
		db: db,
	}
}

func (d *PolicyDAO) FindByDisplayID(ctx context.Context, displayID string) (ValidationPolicy, error) {
	var policy ValidationPolicy

	result := d.db.WithContext(ctx).First(&policy, "display_id = ?", displayID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ValidationPolicy{}, ErrPolicyNotFound
		}

		return ValidationPolicy{}, result.Error
	}

	return policy, nil
}

func (d *PolicyDAO) Upsert(ctx context.Context, policy ValidationPolicy) (ValidationPolicy, error) {
	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "display_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"allow_multiple_plays", "max_plays_per_email", "max_plays_per_phone",
			"time_window_hours", "allow_retry_on_negative", "check_across_displays",
			"check_display_ids", "updated_at",
		}),
	}).Create(&policy)
	if result.Error != nil {
		return ValidationPolicy{}, result.Error
	}

	return d.FindByDisplayID(ctx, policy.DisplayID)
}

package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRedemptionNotFound = errors.New("redemption not found")

type Redemption struct {
	ID           string `gorm:"primaryKey;size:36"`
	SessionID    string `gorm:"size:36;not null;uniqueIndex"`
	UserEmail    string `gorm:"not null;index"`
	UserPhone    string `gorm:"not null;index"`
	OutcomeID    string `gorm:"size:36"`
	OutcomeLabel string
	Code         string `gorm:"column:redemption_code;size:50;uniqueIndex"`
	IsRedeemed   bool   `gorm:"not null;default:false"`
	RedeemedAt   *time.Time
	RedeemedBy   string
	Notes        string
	CreatedAt    time.Time
}

type RedemptionDAO struct {
	db *gorm.DB
}

func NewRedemptionDAO(db *gorm.DB) *RedemptionDAO {
	return &RedemptionDAO{
		db: db,
	}
}

// Upsert inserts the redemption, or refreshes identity/outcome fields when a
// row for the session already exists. A session can never hold two codes.
func (d *RedemptionDAO) Upsert(ctx context.Context, redemption Redemption) (Redemption, error) {
	if redemption.ID == "" {
		redemption.ID = uuid.NewString()
	}

	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_email", "user_phone", "outcome_id", "outcome_label"}),
	}).Create(&redemption)
	if result.Error != nil {
		return Redemption{}, result.Error
	}

	return d.FindBySessionID(ctx, redemption.SessionID)
}

func (d *RedemptionDAO) FindByID(ctx context.Context, id string) (Redemption, error) {
	var redemption Redemption

	result := d.db.WithContext(ctx).First(&redemption, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Redemption{}, ErrRedemptionNotFound
		}

		return Redemption{}, result.Error
	}

	return redemption, nil
}

func (d *RedemptionDAO) FindBySessionID(ctx context.Context, sessionID string) (Redemption, error) {
	var redemption Redemption

	result := d.db.WithContext(ctx).First(&redemption, "session_id = ?", sessionID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Redemption{}, ErrRedemptionNotFound
		}

		return Redemption{}, result.Error
	}

	return redemption, nil
}

func (d *RedemptionDAO) FindByCode(ctx context.Context, code string) (Redemption, error) {
	var redemption Redemption

	result := d.db.WithContext(ctx).First(&redemption, "redemption_code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Redemption{}, ErrRedemptionNotFound
		}

		return Redemption{}, result.Error
	}

	return redemption, nil
}

// MarkRedeemed flips the one-way redeemed flag with the audit trail. Returns
// false when the row was already redeemed.
func (d *RedemptionDAO) MarkRedeemed(ctx context.Context, id, redeemedBy, notes string) (bool, error) {
	now := time.Now().UTC()

	result := d.db.WithContext(ctx).Model(&Redemption{}).
		Where("id = ? AND is_redeemed = ?", id, false).
		Updates(map[string]any{
			"is_redeemed": true,
			"redeemed_at": &now,
			"redeemed_by": redeemedBy,
			"notes":       notes,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (d *RedemptionDAO) FindByDisplay(ctx context.Context, displayID, status string, limit, offset int) ([]Redemption, error) {
	var redemptions []Redemption

	query := d.db.WithContext(ctx).Model(&Redemption{}).
		Joins("JOIN sessions ON sessions.id = redemptions.session_id")
	if displayID != "" {
		query = query.Where("sessions.display_id = ?", displayID)
	}
	switch status {
	case "redeemed":
		query = query.Where("redemptions.is_redeemed = ?", true)
	case "pending":
		query = query.Where("redemptions.is_redeemed = ?", false)
	}

	result := query.
		Order("redemptions.redeemed_at DESC NULLS LAST, redemptions.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&redemptions)
	if result.Error != nil {
		return nil, result.Error
	}

	return redemptions, nil
}

func (d *RedemptionDAO) StatsByDisplay(ctx context.Context, displayID string) (total, redeemed int64, err error) {
	byDisplay := func() *gorm.DB {
		return d.db.WithContext(ctx).Model(&Redemption{}).
			Joins("JOIN sessions ON sessions.id = redemptions.session_id").
			Where("sessions.display_id = ?", displayID)
	}

	if err = byDisplay().Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = byDisplay().Where("redemptions.is_redeemed = ?", true).Count(&redeemed).Error; err != nil {
		return 0, 0, err
	}

	return total, redeemed, nil
}

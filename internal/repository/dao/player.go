package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Player struct {
	ID              string `gorm:"primaryKey;size:36"`
	DisplayID       string `gorm:"size:50;not null;index"`
	Name            string `gorm:"not null"`
	Email           string
	Phone           string
	EmailNormalized string `gorm:"index:idx_players_email_normalized"`
	PhoneNormalized string `gorm:"index:idx_players_phone_normalized"`
	CreatedAt       time.Time
}

type PlayerDAO struct {
	db *gorm.DB
}

func NewPlayerDAO(db *gorm.DB) *PlayerDAO {
	return &PlayerDAO{
		db: db,
	}
}

func (d *PlayerDAO) FindByDisplay(ctx context.Context, displayID string, limit, offset int) ([]Player, error) {
	var players []Player

	result := d.db.WithContext(ctx).
		Where("display_id = ?", displayID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&players)
	if result.Error != nil {
		return nil, result.Error
	}

	return players, nil
}

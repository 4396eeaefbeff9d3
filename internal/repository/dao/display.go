package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDisplayExists   = errors.New("display instance already exists")
	ErrDisplayNotFound = errors.New("display instance not found")
)

type DisplayInstance struct {
	ID               string `gorm:"primaryKey;size:50"`
	LocationName     string `gorm:"not null"`
	QRCodeURL        string
	IsActive         bool   `gorm:"not null;default:true"`
	Timezone         string `gorm:"not null;default:UTC"`
	LogoURL          string
	BackgroundConfig string    `gorm:"type:jsonb"`
	CreatedAt        time.Time `gorm:"not null"`
}

type DisplayDAO struct {
	db *gorm.DB
}

func NewDisplayDAO(db *gorm.DB) *DisplayDAO {
	return &DisplayDAO{
		db: db,
	}
}

func (d *DisplayDAO) Insert(ctx context.Context, display DisplayInstance) (DisplayInstance, error) {
	result := d.db.WithContext(ctx).Create(&display)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return DisplayInstance{}, ErrDisplayExists
		}

		return DisplayInstance{}, result.Error
	}

	return display, nil
}

func (d *DisplayDAO) FindByID(ctx context.Context, id string) (DisplayInstance, error) {
	var display DisplayInstance

	result := d.db.WithContext(ctx).First(&display, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return DisplayInstance{}, ErrDisplayNotFound
		}

		return DisplayInstance{}, result.Error
	}

	return display, nil
}

func (d *DisplayDAO) FindAll(ctx context.Context) ([]DisplayInstance, error) {
	var displays []DisplayInstance

	result := d.db.WithContext(ctx).Order("created_at DESC").Find(&displays)
	if result.Error != nil {
		return nil, result.Error
	}

	return displays, nil
}

func (d *DisplayDAO) Update(ctx context.Context, id string, fields map[string]any) (DisplayInstance, error) {
	result := d.db.WithContext(ctx).Model(&DisplayInstance{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return DisplayInstance{}, result.Error
	}
	if result.RowsAffected == 0 {
		return DisplayInstance{}, ErrDisplayNotFound
	}

	return d.FindByID(ctx, id)
}

// Delete removes the instance and everything it owns. Kept as one
// transaction so a partial cascade never survives.
func (d *DisplayDAO) Delete(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("session_id IN (?)", tx.Model(&Session{}).Select("id").Where("display_id = ?", id)).
			Delete(&Redemption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("display_id = ?", id).Delete(&Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("display_id = ?", id).Delete(&Player{}).Error; err != nil {
			return err
		}
		if err := tx.Where("display_id = ?", id).Delete(&Outcome{}).Error; err != nil {
			return err
		}
		if err := tx.Where("display_id = ?", id).Delete(&ValidationPolicy{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&DisplayInstance{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDisplayNotFound
		}

		return nil
	})
}

func (d *DisplayDAO) Stats(ctx context.Context, id string) (totalPlayers, totalSessions, completed int64, err error) {
	if err = d.db.WithContext(ctx).Model(&Player{}).Where("display_id = ?", id).Count(&totalPlayers).Error; err != nil {
		return 0, 0, 0, err
	}
	if err = d.db.WithContext(ctx).Model(&Session{}).Where("display_id = ?", id).Count(&totalSessions).Error; err != nil {
		return 0, 0, 0, err
	}
	if err = d.db.WithContext(ctx).Model(&Session{}).
		Where("display_id = ? AND status = ?", id, "completed").Count(&completed).Error; err != nil {
		return 0, 0, 0, err
	}

	return totalPlayers, totalSessions, completed, nil
}

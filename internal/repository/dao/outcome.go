package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrOutcomeNotFound = errors.New("outcome not found")

type Outcome struct {
	ID                string `gorm:"primaryKey;size:36"`
	DisplayID         string `gorm:"size:50;not null;index"`
	Label             string `gorm:"not null"`
	ProbabilityWeight int    `gorm:"not null;default:1"`
	IsActive          bool   `gorm:"not null;default:true"`
	IsNegative        bool   `gorm:"not null;default:false"`
	CreatedAt         time.Time
}

type OutcomeDAO struct {
	db *gorm.DB
}

func NewOutcomeDAO(db *gorm.DB) *OutcomeDAO {
	return &OutcomeDAO{
		db: db,
	}
}

func (d *OutcomeDAO) Insert(ctx context.Context, outcome Outcome) (Outcome, error) {
	if outcome.ID == "" {
		outcome.ID = uuid.NewString()
	}

	result := d.db.WithContext(ctx).Create(&outcome)
	if result.Error != nil {
		return Outcome{}, result.Error
	}

	return outcome, nil
}

func (d *OutcomeDAO) FindByID(ctx context.Context, id string) (Outcome, error) {
	var outcome Outcome

	result := d.db.WithContext(ctx).First(&outcome, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Outcome{}, ErrOutcomeNotFound
		}

		return Outcome{}, result.Error
	}

	return outcome, nil
}

// FindActiveByDisplay returns the display's active outcomes in the fixed
// selection order: weight descending, id ascending as the tie-break.
func (d *OutcomeDAO) FindActiveByDisplay(ctx context.Context, displayID string) ([]Outcome, error) {
	var outcomes []Outcome

	result := d.db.WithContext(ctx).
		Where("display_id = ? AND is_active = ?", displayID, true).
		Order("probability_weight DESC, id ASC").
		Find(&outcomes)
	if result.Error != nil {
		return nil, result.Error
	}

	return outcomes, nil
}

func (d *OutcomeDAO) FindByDisplay(ctx context.Context, displayID string) ([]Outcome, error) {
	var outcomes []Outcome

	result := d.db.WithContext(ctx).
		Where("display_id = ?", displayID).
		Order("probability_weight DESC, id ASC").
		Find(&outcomes)
	if result.Error != nil {
		return nil, result.Error
	}

	return outcomes, nil
}

func (d *OutcomeDAO) Update(ctx context.Context, id string, fields map[string]any) (Outcome, error) {
	result := d.db.WithContext(ctx).Model(&Outcome{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return Outcome{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Outcome{}, ErrOutcomeNotFound
	}

	return d.FindByID(ctx, id)
}

// WeightChange is one entry of a bulk weight update.
type WeightChange struct {
	ID     string
	Weight int
}

// UpdateWeights applies the whole batch in one transaction; an unknown id
// rolls everything back.
func (d *OutcomeDAO) UpdateWeights(ctx context.Context, changes []WeightChange) ([]Outcome, error) {
	var updated []Outcome

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(changes))
		for _, change := range changes {
			result := tx.Model(&Outcome{}).
				Where("id = ?", change.ID).
				Update("probability_weight", change.Weight)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrOutcomeNotFound
			}
			ids = append(ids, change.ID)
		}

		return tx.Where("id IN ?", ids).
			Order("probability_weight DESC, id ASC").
			Find(&updated).Error
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (d *OutcomeDAO) Delete(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).Delete(&Outcome{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOutcomeNotFound
	}

	return nil
}

package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")

	// ErrDuplicateAttempt means the identity already has a live session on
	// the display; a concurrent submit lost the insert guard.
	ErrDuplicateAttempt = errors.New("duplicate attempt in flight")
)

type Session struct {
	ID        string `gorm:"primaryKey;size:36"`
	DisplayID string `gorm:"size:50;not null;index"`
	PlayerID  string `gorm:"size:36;not null;index"`
	OutcomeID string `gorm:"size:36;not null"`
	Status    string `gorm:"size:20;not null;default:pending;index"`
	CreatedAt time.Time

	Player  Player  `gorm:"foreignKey:PlayerID"`
	Outcome Outcome `gorm:"foreignKey:OutcomeID"`
}

type SessionDAO struct {
	db *gorm.DB
}

func NewSessionDAO(db *gorm.DB) *SessionDAO {
	return &SessionDAO{
		db: db,
	}
}

// InsertWithPlayer creates the player row and its pending session in one
// transaction. The advisory lock serializes same-identity submits and the
// guarded insert refuses when the identity already has a live session on the
// display, closing the window between the eligibility check and the insert.
func (d *SessionDAO) InsertWithPlayer(ctx context.Context, player Player, session Session) (Session, error) {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.PlayerID = player.ID
	session.CreatedAt = time.Now()

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockKey := session.DisplayID + "|" + player.EmailNormalized + "|" + player.PhoneNormalized
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey).Error; err != nil {
			return err
		}

		if result := tx.Create(&player); result.Error != nil {
			return result.Error
		}

		result := tx.Exec(`
			INSERT INTO sessions (id, display_id, player_id, outcome_id, status, created_at)
			SELECT ?, ?, ?, ?, ?, ?
			WHERE NOT EXISTS (
				SELECT 1 FROM sessions
				JOIN players ON players.id = sessions.player_id
				WHERE sessions.display_id = ?
				  AND sessions.status IN ('pending', 'playing')
				  AND (players.email_normalized = ? OR players.phone_normalized = ?)
			)`,
			session.ID, session.DisplayID, session.PlayerID, session.OutcomeID, session.Status, session.CreatedAt,
			session.DisplayID, player.EmailNormalized, player.PhoneNormalized,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDuplicateAttempt
		}

		return nil
	})
	if err != nil {
		return Session{}, err
	}

	session.Player = player

	return session, nil
}

func (d *SessionDAO) FindByID(ctx context.Context, id string) (Session, error) {
	var session Session

	result := d.db.WithContext(ctx).
		Preload("Player").
		Preload("Outcome").
		First(&session, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Session{}, ErrSessionNotFound
		}

		return Session{}, result.Error
	}

	return session, nil
}

// FindLatestMatch returns the most recent session across the given displays
// whose player's normalized email or phone matches, restricted to the given
// statuses.
func (d *SessionDAO) FindLatestMatch(ctx context.Context, displayIDs []string, email, phone string, statuses []string) (Session, error) {
	var session Session

	result := d.db.WithContext(ctx).
		Joins("JOIN players ON players.id = sessions.player_id").
		Where("sessions.display_id IN ?", displayIDs).
		Where("players.email_normalized = ? OR players.phone_normalized = ?", email, phone).
		Where("sessions.status IN ?", statuses).
		Order("sessions.created_at DESC").
		Preload("Outcome").
		First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Session{}, ErrSessionNotFound
		}

		return Session{}, result.Error
	}

	return session, nil
}

// CountCompletedMatches counts finished plays by the identity across the
// given displays.
func (d *SessionDAO) CountCompletedMatches(ctx context.Context, displayIDs []string, email, phone string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Session{}).
		Joins("JOIN players ON players.id = sessions.player_id").
		Where("sessions.display_id IN ?", displayIDs).
		Where("players.email_normalized = ? OR players.phone_normalized = ?", email, phone).
		Where("sessions.status = ?", "completed").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *SessionDAO) CountByDisplay(ctx context.Context, displayID string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Session{}).
		Where("display_id = ?", displayID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// CountByOutcome returns how many sessions each outcome of the display has
// produced, keyed by outcome id.
func (d *SessionDAO) CountByOutcome(ctx context.Context, displayID string) (map[string]int64, error) {
	type row struct {
		OutcomeID string
		Cnt       int64
	}
	var rows []row

	result := d.db.WithContext(ctx).Model(&Session{}).
		Select("outcome_id, COUNT(*) as cnt").
		Where("display_id = ?", displayID).
		Group("outcome_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.OutcomeID] = r.Cnt
	}

	return counts, nil
}

// UpdateStatusIf transitions the session only when its current status is one
// of the expected ones. Returns false when the guard lost, so racing callers
// can tell a no-op from a win.
func (d *SessionDAO) UpdateStatusIf(ctx context.Context, id string, expected []string, to string) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Session{}).
		Where("id = ? AND status IN ?", id, expected).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// CompleteStuck forces playing sessions older than the cutoff to completed,
// using the same conditional-update guard as live traffic.
func (d *SessionDAO) CompleteStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	result := d.db.WithContext(ctx).Model(&Session{}).
		Where("status = ? AND created_at < ?", "playing", olderThan).
		Update("status", "completed")
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (d *SessionDAO) FindByDisplay(ctx context.Context, displayID string, limit, offset int) ([]Session, error) {
	var sessions []Session

	result := d.db.WithContext(ctx).
		Where("display_id = ?", displayID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Preload("Player").
		Preload("Outcome").
		Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}

	return sessions, nil
}

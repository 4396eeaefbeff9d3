package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository/dao"
)

var (
	ErrSessionNotFound  = dao.ErrSessionNotFound
	ErrDuplicateAttempt = dao.ErrDuplicateAttempt
)

type SessionDAO interface {
	InsertWithPlayer(ctx context.Context, player dao.Player, session dao.Session) (dao.Session, error)
	FindByID(ctx context.Context, id string) (dao.Session, error)
	FindLatestMatch(ctx context.Context, displayIDs []string, email, phone string, statuses []string) (dao.Session, error)
	CountCompletedMatches(ctx context.Context, displayIDs []string, email, phone string) (int64, error)
	CountByDisplay(ctx context.Context, displayID string) (int64, error)
	CountByOutcome(ctx context.Context, displayID string) (map[string]int64, error)
	UpdateStatusIf(ctx context.Context, id string, expected []string, to string) (bool, error)
	CompleteStuck(ctx context.Context, olderThan time.Time) (int64, error)
	FindByDisplay(ctx context.Context, displayID string, limit, offset int) ([]dao.Session, error)
}

type PlayerDAO interface {
	FindByDisplay(ctx context.Context, displayID string, limit, offset int) ([]dao.Player, error)
}

type SessionRepository struct {
	sessions SessionDAO
	players  PlayerDAO
}

func NewSessionRepository(sessions SessionDAO, players PlayerDAO) *SessionRepository {
	return &SessionRepository{
		sessions: sessions,
		players:  players,
	}
}

// CreateWithPlayer persists the player record and the pending session bound
// to it, in one transaction guarded against concurrent same-identity submits.
func (r *SessionRepository) CreateWithPlayer(ctx context.Context, player domain.Player, outcomeID string) (domain.Session, error) {
	created, err := r.sessions.InsertWithPlayer(ctx, dao.Player{
		DisplayID:       player.DisplayID,
		Name:            player.Name,
		Email:           player.Email,
		Phone:           player.Phone,
		EmailNormalized: player.EmailNormalized,
		PhoneNormalized: player.PhoneNormalized,
	}, dao.Session{
		DisplayID: player.DisplayID,
		OutcomeID: outcomeID,
		Status:    domain.SessionPending,
	})
	if err != nil {
		if errors.Is(err, dao.ErrDuplicateAttempt) {
			return domain.Session{}, ErrDuplicateAttempt
		}

		return domain.Session{}, fmt.Errorf("r.sessions.InsertWithPlayer -> %w", err)
	}

	return sessionDaoToDomain(created), nil
}

// ListPlayersByDisplay returns the display's player records, newest first.
func (r *SessionRepository) ListPlayersByDisplay(ctx context.Context, displayID string, limit, offset int) ([]domain.Player, error) {
	found, err := r.players.FindByDisplay(ctx, displayID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.players.FindByDisplay -> %w", err)
	}

	players := make([]domain.Player, 0, len(found))
	for _, p := range found {
		players = append(players, playerDaoToDomain(p))
	}

	return players, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (domain.Session, error) {
	found, err := r.sessions.FindByID(ctx, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("r.sessions.FindByID -> %w", err)
	}

	return sessionDaoToDomain(found), nil
}

func (r *SessionRepository) FindLatestMatch(ctx context.Context, displayIDs []string, email, phone string, statuses []string) (domain.Session, error) {
	found, err := r.sessions.FindLatestMatch(ctx, displayIDs, email, phone, statuses)
	if err != nil {
		return domain.Session{}, fmt.Errorf("r.sessions.FindLatestMatch -> %w", err)
	}

	return sessionDaoToDomain(found), nil
}

func (r *SessionRepository) CountCompletedMatches(ctx context.Context, displayIDs []string, email, phone string) (int64, error) {
	count, err := r.sessions.CountCompletedMatches(ctx, displayIDs, email, phone)
	if err != nil {
		return 0, fmt.Errorf("r.sessions.CountCompletedMatches -> %w", err)
	}

	return count, nil
}

func (r *SessionRepository) CountByDisplay(ctx context.Context, displayID string) (int64, error) {
	count, err := r.sessions.CountByDisplay(ctx, displayID)
	if err != nil {
		return 0, fmt.Errorf("r.sessions.CountByDisplay -> %w", err)
	}

	return count, nil
}

func (r *SessionRepository) CountByOutcome(ctx context.Context, displayID string) (map[string]int64, error) {
	counts, err := r.sessions.CountByOutcome(ctx, displayID)
	if err != nil {
		return nil, fmt.Errorf("r.sessions.CountByOutcome -> %w", err)
	}

	return counts, nil
}

func (r *SessionRepository) TransitionStatus(ctx context.Context, id string, expected []string, to string) (bool, error) {
	ok, err := r.sessions.UpdateStatusIf(ctx, id, expected, to)
	if err != nil {
		return false, fmt.Errorf("r.sessions.UpdateStatusIf -> %w", err)
	}

	return ok, nil
}

func (r *SessionRepository) CompleteStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	count, err := r.sessions.CompleteStuck(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("r.sessions.CompleteStuck -> %w", err)
	}

	return count, nil
}

func (r *SessionRepository) FindByDisplay(ctx context.Context, displayID string, limit, offset int) ([]domain.Session, error) {
	found, err := r.sessions.FindByDisplay(ctx, displayID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.sessions.FindByDisplay -> %w", err)
	}

	sessions := make([]domain.Session, 0, len(found))
	for _, s := range found {
		sessions = append(sessions, sessionDaoToDomain(s))
	}

	return sessions, nil
}

func sessionDaoToDomain(s dao.Session) domain.Session {
	session := domain.Session{
		ID:        s.ID,
		DisplayID: s.DisplayID,
		PlayerID:  s.PlayerID,
		OutcomeID: s.OutcomeID,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
	}

	if s.Player.ID != "" {
		player := playerDaoToDomain(s.Player)
		session.Player = &player
	}
	if s.Outcome.ID != "" {
		outcome := outcomeDaoToDomain(s.Outcome)
		session.Outcome = &outcome
	}

	return session
}

func playerDaoToDomain(p dao.Player) domain.Player {
	return domain.Player{
		ID:              p.ID,
		DisplayID:       p.DisplayID,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		EmailNormalized: p.EmailNormalized,
		PhoneNormalized: p.PhoneNormalized,
		CreatedAt:       p.CreatedAt,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

var (
	ErrSessionNotFound = repository.ErrSessionNotFound
	ErrInvalidState    = errors.New("session is not in the expected state")
)

// IneligibleError carries the user-facing rejection reason from the rule
// engine through the submission path.
type IneligibleError struct {
	Reason string
}

func (e *IneligibleError) Error() string {
	return e.Reason
}

type GameSessionRepository interface {
	CreateWithPlayer(ctx context.Context, player domain.Player, outcomeID string) (domain.Session, error)
	FindByID(ctx context.Context, id string) (domain.Session, error)
	TransitionStatus(ctx context.Context, id string, expected []string, to string) (bool, error)
	CompleteStuck(ctx context.Context, olderThan time.Time) (int64, error)
	FindByDisplay(ctx context.Context, displayID string, limit, offset int) ([]domain.Session, error)
	ListPlayersByDisplay(ctx context.Context, displayID string, limit, offset int) ([]domain.Player, error)
}

type GameOutcomeRepository interface {
	FindByID(ctx context.Context, id string) (domain.Outcome, error)
}

type GameDisplayRepository interface {
	FindByID(ctx context.Context, id string) (domain.DisplayInstance, error)
}

type GameBroadcaster interface {
	Broadcast(displayID string, msg DisplayMessage) int
}

type RedemptionIssuer interface {
	IssueForSession(ctx context.Context, session domain.Session) error
}

type SubmitInput struct {
	Name      string
	Email     string
	Phone     string
	DisplayID string
	Token     string
}

// GameService drives the session lifecycle: submission, buzzer start,
// completion and the stuck-session sweep.
type GameService struct {
	sessions    GameSessionRepository
	outcomes    GameOutcomeRepository
	displays    GameDisplayRepository
	selector    *OutcomeSelector
	rules       *RuleEngine
	tokens      *TokenService
	redemptions RedemptionIssuer
	broadcaster GameBroadcaster
	stuckAge    time.Duration
}

func NewGameService(
	sessions GameSessionRepository,
	outcomes GameOutcomeRepository,
	displays GameDisplayRepository,
	selector *OutcomeSelector,
	rules *RuleEngine,
	tokens *TokenService,
	redemptions RedemptionIssuer,
	broadcaster GameBroadcaster,
	stuckAge time.Duration,
) *GameService {
	return &GameService{
		sessions:    sessions,
		outcomes:    outcomes,
		displays:    displays,
		selector:    selector,
		rules:       rules,
		tokens:      tokens,
		redemptions: redemptions,
		broadcaster: broadcaster,
		stuckAge:    stuckAge,
	}
}

// Submit validates identity, token and policy, rolls the outcome and creates
// the pending session. The display gets a non-authoritative ready
// notification so it can pre-render the selected wheel segment.
func (s *GameService) Submit(ctx context.Context, input SubmitInput) (domain.Session, error) {
	emailNormalized, ok := NormalizeEmail(input.Email)
	if !ok {
		return domain.Session{}, &IneligibleError{Reason: "Please provide a valid email address."}
	}
	phoneNormalized, ok := NormalizePhone(input.Phone)
	if !ok {
		return domain.Session{}, &IneligibleError{Reason: "Please provide a valid 10-digit phone number."}
	}

	display, err := s.displays.FindByID(ctx, input.DisplayID)
	if err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return domain.Session{}, ErrDisplayNotFound
		}

		return domain.Session{}, fmt.Errorf("s.displays.FindByID -> %w", err)
	}
	if !display.IsActive {
		return domain.Session{}, ErrDisplayInactive
	}

	if err = s.tokens.ValidateForDisplay(ctx, input.Token, input.DisplayID); err != nil {
		if errors.Is(err, ErrTokenInvalid) {
			return domain.Session{}, ErrTokenInvalid
		}

		return domain.Session{}, fmt.Errorf("s.tokens.ValidateForDisplay -> %w", err)
	}

	eligibility, err := s.rules.Check(ctx, input.DisplayID, emailNormalized, phoneNormalized)
	if err != nil {
		return domain.Session{}, fmt.Errorf("s.rules.Check -> %w", err)
	}
	if !eligibility.Eligible {
		return domain.Session{}, &IneligibleError{Reason: eligibility.Reason}
	}

	outcome, err := s.selector.Select(ctx, input.DisplayID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("s.selector.Select -> %w", err)
	}

	session, err := s.sessions.CreateWithPlayer(ctx, domain.Player{
		DisplayID:       input.DisplayID,
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		EmailNormalized: emailNormalized,
		PhoneNormalized: phoneNormalized,
	}, outcome.ID)
	if err != nil {
		// The store's insert guard closes the race between the eligibility
		// check and the create.
		if errors.Is(err, repository.ErrDuplicateAttempt) {
			return domain.Session{}, &IneligibleError{Reason: "You have already played on this display."}
		}

		return domain.Session{}, fmt.Errorf("s.sessions.CreateWithPlayer -> %w", err)
	}
	session.Outcome = &outcome

	// Cosmetic pre-render hint only; not a state transition.
	s.broadcaster.Broadcast(input.DisplayID, DisplayMessage{
		Type:       MsgSessionReady,
		SessionID:  session.ID,
		PlayerName: input.Name,
		Outcome:    outcomePayload(&outcome),
	})

	zap.L().Info("session created",
		zap.String("sessionID", session.ID),
		zap.String("displayID", input.DisplayID))

	return session, nil
}

// Start handles the buzzer press: PENDING -> PLAYING, then tells the display
// to begin the animation. The conditional transition guarantees a duplicate
// buzzer press cannot re-broadcast.
func (s *GameService) Start(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}

		return domain.Session{}, fmt.Errorf("s.sessions.FindByID -> %w", err)
	}

	won, err := s.sessions.TransitionStatus(ctx, sessionID, []string{domain.SessionPending}, domain.SessionPlaying)
	if err != nil {
		return domain.Session{}, fmt.Errorf("s.sessions.TransitionStatus -> %w", err)
	}
	if !won {
		zap.L().Warn("cannot start game, session not pending",
			zap.String("sessionID", sessionID),
			zap.String("status", session.Status))
		return domain.Session{}, ErrInvalidState
	}

	var playerName string
	if session.Player != nil {
		playerName = session.Player.Name
	}

	s.broadcaster.Broadcast(session.DisplayID, DisplayMessage{
		Type:       MsgGameStart,
		SessionID:  session.ID,
		PlayerName: playerName,
		Outcome:    outcomePayload(session.Outcome),
	})

	session.Status = domain.SessionPlaying

	return session, nil
}

// Complete finalizes the session, from either the realtime channel or the
// HTTP fallback; the state machine does not know which path delivered it.
// Completing an already-completed session is a no-op success.
func (s *GameService) Complete(ctx context.Context, sessionID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionNotFound
		}

		return fmt.Errorf("s.sessions.FindByID -> %w", err)
	}

	if session.Status == domain.SessionCompleted {
		// A retry after a failed issuance must still get its code; the
		// issuer keeps an existing code, so this cannot double-issue.
		return s.ensureRedemption(ctx, session)
	}

	won, err := s.sessions.TransitionStatus(ctx, sessionID,
		[]string{domain.SessionPending, domain.SessionPlaying}, domain.SessionCompleted)
	if err != nil {
		return fmt.Errorf("s.sessions.TransitionStatus -> %w", err)
	}
	session.Status = domain.SessionCompleted
	if !won {
		// A racing completion got there first; the session is terminal
		// either way.
		return s.ensureRedemption(ctx, session)
	}

	if err = s.ensureRedemption(ctx, session); err != nil {
		return err
	}

	zap.L().Info("session completed", zap.String("sessionID", sessionID))

	return nil
}

func (s *GameService) ensureRedemption(ctx context.Context, session domain.Session) error {
	if session.Outcome == nil {
		// The outcome link should always resolve; try once more before
		// giving up so the player is never left stuck.
		outcome, err := s.outcomes.FindByID(ctx, session.OutcomeID)
		if err != nil {
			zap.L().Warn("completed session with unresolvable outcome, skipping redemption",
				zap.String("sessionID", session.ID),
				zap.String("outcomeID", session.OutcomeID),
				zap.Error(err))
			return nil
		}
		session.Outcome = &outcome
	}

	if err := s.redemptions.IssueForSession(ctx, session); err != nil {
		zap.L().Error("failed to issue redemption",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		return fmt.Errorf("s.redemptions.IssueForSession -> %w", err)
	}

	return nil
}

// ReportCompletion is the display-originated completion path. Unknown
// sessions are logged and ignored so replays from a reconnecting display
// stay harmless.
func (s *GameService) ReportCompletion(ctx context.Context, sessionID string) {
	if err := s.Complete(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			zap.L().Warn("completion report for unknown session",
				zap.String("sessionID", sessionID))
			return
		}

		zap.L().Error("failed to complete session from display report",
			zap.String("sessionID", sessionID),
			zap.Error(err))
	}
}

func (s *GameService) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}

		return domain.Session{}, fmt.Errorf("s.sessions.FindByID -> %w", err)
	}

	return session, nil
}

func (s *GameService) ListByDisplay(ctx context.Context, displayID string, limit, offset int) ([]domain.Session, error) {
	sessions, err := s.sessions.FindByDisplay(ctx, displayID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.sessions.FindByDisplay -> %w", err)
	}

	return sessions, nil
}

func (s *GameService) ListPlayers(ctx context.Context, displayID string, limit, offset int) ([]domain.Player, error) {
	players, err := s.sessions.ListPlayersByDisplay(ctx, displayID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.sessions.ListPlayersByDisplay -> %w", err)
	}

	return players, nil
}

// SweepStuck forces playing sessions older than the configured age to
// completed. Runs periodically; safe to race live traffic because the store
// applies the same conditional update.
func (s *GameService) SweepStuck(ctx context.Context) (int64, error) {
	count, err := s.sessions.CompleteStuck(ctx, time.Now().Add(-s.stuckAge))
	if err != nil {
		return 0, fmt.Errorf("s.sessions.CompleteStuck -> %w", err)
	}

	if count > 0 {
		zap.L().Info("swept stuck sessions", zap.Int64("count", count))
	}

	return count, nil
}

func outcomePayload(o *domain.Outcome) *OutcomePayload {
	if o == nil {
		return nil
	}

	return &OutcomePayload{
		ID:         o.ID,
		Label:      o.Label,
		IsNegative: o.IsNegative,
	}
}

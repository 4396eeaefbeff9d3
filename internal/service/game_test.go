package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosign/spin-api/internal/config"
	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

type fakeGameSessions struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	outcomes  map[string]domain.Outcome
	nextID    int
	swept     int64
	createErr error
}

func newFakeGameSessions(outcomes map[string]domain.Outcome) *fakeGameSessions {
	return &fakeGameSessions{
		sessions: make(map[string]*domain.Session),
		outcomes: outcomes,
	}
}

func (f *fakeGameSessions) CreateWithPlayer(_ context.Context, player domain.Player, outcomeID string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.Session{}, f.createErr
	}

	f.nextID++
	session := &domain.Session{
		ID:        fmt.Sprintf("s%d", f.nextID),
		DisplayID: player.DisplayID,
		OutcomeID: outcomeID,
		Status:    domain.SessionPending,
		CreatedAt: time.Now(),
		Player:    &player,
	}
	f.sessions[session.ID] = session

	return *session, nil
}

func (f *fakeGameSessions) FindByID(_ context.Context, id string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[id]
	if !ok {
		return domain.Session{}, repository.ErrSessionNotFound
	}

	// The real store preloads the outcome association.
	found := *session
	if outcome, ok := f.outcomes[found.OutcomeID]; ok {
		found.Outcome = &outcome
	}

	return found, nil
}

func (f *fakeGameSessions) TransitionStatus(_ context.Context, id string, expected []string, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[id]
	if !ok {
		return false, nil
	}

	for _, status := range expected {
		if session.Status == status {
			session.Status = to
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeGameSessions) CompleteStuck(_ context.Context, _ time.Time) (int64, error) {
	return f.swept, nil
}

func (f *fakeGameSessions) ListPlayersByDisplay(_ context.Context, displayID string, _, _ int) ([]domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []domain.Player
	for _, session := range f.sessions {
		if session.DisplayID == displayID && session.Player != nil {
			result = append(result, *session.Player)
		}
	}

	return result, nil
}

func (f *fakeGameSessions) FindByDisplay(_ context.Context, displayID string, _, _ int) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []domain.Session
	for _, session := range f.sessions {
		if session.DisplayID == displayID {
			result = append(result, *session)
		}
	}

	return result, nil
}

type fakeGameOutcomes struct {
	outcomes map[string]domain.Outcome
}

func (f *fakeGameOutcomes) FindByID(_ context.Context, id string) (domain.Outcome, error) {
	outcome, ok := f.outcomes[id]
	if !ok {
		return domain.Outcome{}, repository.ErrOutcomeNotFound
	}

	return outcome, nil
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []DisplayMessage
}

func (b *recordingBroadcaster) Broadcast(_ string, msg DisplayMessage) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append(b.messages, msg)

	return 1
}

func (b *recordingBroadcaster) byType(msgType string) []DisplayMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	var result []DisplayMessage
	for _, msg := range b.messages {
		if msg.Type == msgType {
			result = append(result, msg)
		}
	}

	return result
}

type recordingIssuer struct {
	mu       sync.Mutex
	issued   []string
	failNext error
}

// IssueForSession mirrors the real issuer: a session that already has a code
// keeps it, so repeat calls never double-issue.
func (r *recordingIssuer) IssueForSession(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil

		return err
	}

	for _, id := range r.issued {
		if id == session.ID {
			return nil
		}
	}
	r.issued = append(r.issued, session.ID)

	return nil
}

type gameTestEnv struct {
	svc         *GameService
	sessions    *fakeGameSessions
	broadcaster *recordingBroadcaster
	issuer      *recordingIssuer
	token       string
}

func setupGameService(t *testing.T) *gameTestEnv {
	t.Helper()

	broadcaster := &recordingBroadcaster{}
	issuer := &recordingIssuer{}

	wheel := defaultWheel()
	outcomeByID := make(map[string]domain.Outcome, len(wheel))
	for _, o := range wheel {
		outcomeByID[o.ID] = o
	}
	sessions := newFakeGameSessions(outcomeByID)

	selector := NewOutcomeSelector(
		&fakeSelectorOutcomes{outcomes: wheel},
		&fakeSelectorSessions{},
		&config.GameConfig{},
	).WithRand(func() float64 { return 0.5 }) // always lands on o1

	rules := NewRuleEngine(
		&fakeRuleSessions{},
		&fakeRulePolicies{policy: domain.ValidationPolicy{
			AllowMultiplePlays:   true,
			AllowRetryOnNegative: true,
		}},
	)

	tokenSvc, _ := setupTokenService(t)
	token, _, err := tokenSvc.Issue(context.Background(), "lobby_1")
	require.NoError(t, err)

	svc := NewGameService(
		sessions,
		&fakeGameOutcomes{outcomes: outcomeByID},
		&fakeTokenDisplays{displays: map[string]domain.DisplayInstance{
			"lobby_1": {ID: "lobby_1", IsActive: true},
			"closed":  {ID: "closed", IsActive: false},
		}},
		selector,
		rules,
		tokenSvc,
		issuer,
		broadcaster,
		2*time.Minute,
	)

	return &gameTestEnv{
		svc:         svc,
		sessions:    sessions,
		broadcaster: broadcaster,
		issuer:      issuer,
		token:       token,
	}
}

func validSubmit(token string) SubmitInput {
	return SubmitInput{
		Name:      "Jane",
		Email:     "jane@example.com",
		Phone:     "(555) 123-4567",
		DisplayID: "lobby_1",
		Token:     token,
	}
}

func TestGameService_Submit(t *testing.T) {
	env := setupGameService(t)

	session, err := env.svc.Submit(context.Background(), validSubmit(env.token))

	require.NoError(t, err)
	assert.Equal(t, domain.SessionPending, session.Status)
	require.NotNil(t, session.Outcome)
	assert.Equal(t, "o1", session.Outcome.ID)
	assert.Equal(t, "jane@example.com", session.Player.EmailNormalized)
	assert.Equal(t, "5551234567", session.Player.PhoneNormalized)

	ready := env.broadcaster.byType(MsgSessionReady)
	require.Len(t, ready, 1)
	assert.Equal(t, session.ID, ready[0].SessionID)
	assert.Equal(t, "Jane", ready[0].PlayerName)
}

func TestGameService_Submit_InvalidIdentity(t *testing.T) {
	env := setupGameService(t)

	tests := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{name: "bad email", mutate: func(in *SubmitInput) { in.Email = "   " }},
		{name: "bad phone", mutate: func(in *SubmitInput) { in.Phone = "12345" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validSubmit(env.token)
			tt.mutate(&input)

			_, err := env.svc.Submit(context.Background(), input)

			var ineligible *IneligibleError
			assert.ErrorAs(t, err, &ineligible)
		})
	}
}

func TestGameService_Submit_BadToken(t *testing.T) {
	env := setupGameService(t)

	input := validSubmit("deadbeef")

	_, err := env.svc.Submit(context.Background(), input)

	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGameService_Submit_InactiveDisplay(t *testing.T) {
	env := setupGameService(t)

	input := validSubmit(env.token)
	input.DisplayID = "closed"

	_, err := env.svc.Submit(context.Background(), input)

	assert.ErrorIs(t, err, ErrDisplayInactive)
}

func TestGameService_Submit_ConcurrentDuplicateLosesInsertGuard(t *testing.T) {
	// A simultaneous submit for the same identity passes the eligibility
	// check but loses the store's guarded insert.
	env := setupGameService(t)
	env.sessions.createErr = repository.ErrDuplicateAttempt

	_, err := env.svc.Submit(context.Background(), validSubmit(env.token))

	var ineligible *IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Equal(t, "You have already played on this display.", ineligible.Reason)
}

func TestGameService_StartAndComplete(t *testing.T) {
	env := setupGameService(t)
	ctx := context.Background()

	created, err := env.svc.Submit(ctx, validSubmit(env.token))
	require.NoError(t, err)

	started, err := env.svc.Start(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPlaying, started.Status)

	starts := env.broadcaster.byType(MsgGameStart)
	require.Len(t, starts, 1)
	require.NotNil(t, starts[0].Outcome)
	assert.Equal(t, "o1", starts[0].Outcome.ID)

	require.NoError(t, env.svc.Complete(ctx, created.ID))

	final, err := env.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, final.Status)
	assert.Equal(t, []string{created.ID}, env.issuer.issued)
}

func TestGameService_Start_DuplicateBuzzerPress(t *testing.T) {
	env := setupGameService(t)
	ctx := context.Background()

	created, err := env.svc.Submit(ctx, validSubmit(env.token))
	require.NoError(t, err)

	_, err = env.svc.Start(ctx, created.ID)
	require.NoError(t, err)

	_, err = env.svc.Start(ctx, created.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// The duplicate press must not re-trigger the animation.
	assert.Len(t, env.broadcaster.byType(MsgGameStart), 1)
}

func TestGameService_Start_UnknownSession(t *testing.T) {
	env := setupGameService(t)

	_, err := env.svc.Start(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGameService_Complete_Idempotent(t *testing.T) {
	env := setupGameService(t)
	ctx := context.Background()

	created, err := env.svc.Submit(ctx, validSubmit(env.token))
	require.NoError(t, err)

	_, err = env.svc.Start(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Complete(ctx, created.ID))
	require.NoError(t, env.svc.Complete(ctx, created.ID))
	require.NoError(t, env.svc.Complete(ctx, created.ID))

	// Repeat completions never issue a second redemption.
	assert.Equal(t, []string{created.ID}, env.issuer.issued)
}

func TestGameService_Complete_RetriesFailedIssuance(t *testing.T) {
	env := setupGameService(t)
	ctx := context.Background()

	created, err := env.svc.Submit(ctx, validSubmit(env.token))
	require.NoError(t, err)

	_, err = env.svc.Start(ctx, created.ID)
	require.NoError(t, err)

	env.issuer.failNext = errors.New("redemption store down")
	require.Error(t, env.svc.Complete(ctx, created.ID))
	assert.Empty(t, env.issuer.issued)

	// The session is already completed, but the retry must still get the
	// player their code.
	require.NoError(t, env.svc.Complete(ctx, created.ID))
	assert.Equal(t, []string{created.ID}, env.issuer.issued)
}

func TestGameService_Complete_FromPending(t *testing.T) {
	// The HTTP fallback may fire before the buzzer was ever pressed.
	env := setupGameService(t)
	ctx := context.Background()

	created, err := env.svc.Submit(ctx, validSubmit(env.token))
	require.NoError(t, err)

	require.NoError(t, env.svc.Complete(ctx, created.ID))

	final, err := env.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, final.Status)
}

func TestGameService_ReportCompletion_UnknownSessionIsIgnored(t *testing.T) {
	env := setupGameService(t)

	// Must not panic or error; replays from reconnecting displays are
	// expected noise.
	env.svc.ReportCompletion(context.Background(), "ghost")

	assert.Empty(t, env.issuer.issued)
}

func TestGameService_ListPlayers(t *testing.T) {
	env := setupGameService(t)
	ctx := context.Background()

	_, err := env.sessions.CreateWithPlayer(ctx, domain.Player{
		DisplayID: "lobby_1", Name: "Jane", EmailNormalized: "jane@example.com",
	}, "o1")
	require.NoError(t, err)
	_, err = env.sessions.CreateWithPlayer(ctx, domain.Player{
		DisplayID: "lobby_1", Name: "Bob", EmailNormalized: "bob@example.com",
	}, "o1")
	require.NoError(t, err)

	players, err := env.svc.ListPlayers(ctx, "lobby_1", 50, 0)
	require.NoError(t, err)
	assert.Len(t, players, 2)

	players, err = env.svc.ListPlayers(ctx, "other_display", 50, 0)
	require.NoError(t, err)
	assert.Empty(t, players)
}

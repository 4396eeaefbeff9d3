package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

type fakeTokenDisplays struct {
	displays map[string]domain.DisplayInstance
}

func (f *fakeTokenDisplays) FindByID(_ context.Context, id string) (domain.DisplayInstance, error) {
	display, ok := f.displays[id]
	if !ok {
		return domain.DisplayInstance{}, repository.ErrDisplayNotFound
	}

	return display, nil
}

func setupTokenService(t *testing.T) (*TokenService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := repository.NewRedisTokenStore(client)

	displays := &fakeTokenDisplays{
		displays: map[string]domain.DisplayInstance{
			"lobby_1": {ID: "lobby_1", IsActive: true},
			"lobby_2": {ID: "lobby_2", IsActive: true},
			"closed":  {ID: "closed", IsActive: false},
		},
	}

	return NewTokenService(displays, store, 15*time.Minute), mr
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc, _ := setupTokenService(t)
	ctx := context.Background()

	token, ttl, err := svc.Issue(ctx, "lobby_1")

	require.NoError(t, err)
	assert.Len(t, token, 64) // 32 random bytes, hex encoded
	assert.Equal(t, 15*time.Minute, ttl)

	displayID, err := svc.Validate(ctx, token)

	require.NoError(t, err)
	assert.Equal(t, "lobby_1", displayID)
}

func TestTokenService_Issue_UnknownDisplay(t *testing.T) {
	svc, _ := setupTokenService(t)

	_, _, err := svc.Issue(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrDisplayNotFound)
}

func TestTokenService_Issue_InactiveDisplay(t *testing.T) {
	svc, _ := setupTokenService(t)

	_, _, err := svc.Issue(context.Background(), "closed")

	assert.ErrorIs(t, err, ErrDisplayInactive)
}

func TestTokenService_Validate_UnknownToken(t *testing.T) {
	svc, _ := setupTokenService(t)

	_, err := svc.Validate(context.Background(), "deadbeef")

	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Validate_ExpiredToken(t *testing.T) {
	svc, mr := setupTokenService(t)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "lobby_1")
	require.NoError(t, err)

	mr.FastForward(16 * time.Minute)

	_, err = svc.Validate(ctx, token)

	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Validate_LazyExpiry(t *testing.T) {
	// Even if the backing store fails to evict, a stale ExpiresAt must be
	// rejected and the token deleted.
	svc, _ := setupTokenService(t)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "lobby_1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	svc.now = time.Now
	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_ValidateForDisplay(t *testing.T) {
	svc, _ := setupTokenService(t)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "lobby_1")
	require.NoError(t, err)

	assert.NoError(t, svc.ValidateForDisplay(ctx, token, "lobby_1"))
	assert.ErrorIs(t, svc.ValidateForDisplay(ctx, token, "lobby_2"), ErrTokenInvalid)
}

func TestTokenService_Validate_DoesNotConsume(t *testing.T) {
	svc, _ := setupTokenService(t)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "lobby_1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		displayID, err := svc.Validate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "lobby_1", displayID)
	}
}

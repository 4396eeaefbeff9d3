package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

var (
	ErrDisplayNotFound = repository.ErrDisplayNotFound
	ErrDisplayInactive = errors.New("display is not active")

	// ErrTokenInvalid deliberately covers unknown, expired and
	// wrong-display tokens alike, so callers cannot probe which it was.
	ErrTokenInvalid = errors.New("invalid or expired token")
)

type TokenDisplayRepository interface {
	FindByID(ctx context.Context, id string) (domain.DisplayInstance, error)
}

// TokenService issues and validates the short-lived tokens gating form
// submission to a single display.
type TokenService struct {
	displays TokenDisplayRepository
	store    repository.TokenStore
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenService(displays TokenDisplayRepository, store repository.TokenStore, ttl time.Duration) *TokenService {
	return &TokenService{
		displays: displays,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *TokenService) Issue(ctx context.Context, displayID string) (token string, ttl time.Duration, err error) {
	display, err := s.displays.FindByID(ctx, displayID)
	if err != nil {
		if errors.Is(err, repository.ErrDisplayNotFound) {
			return "", 0, ErrDisplayNotFound
		}

		return "", 0, fmt.Errorf("s.displays.FindByID -> %w", err)
	}
	if !display.IsActive {
		return "", 0, ErrDisplayInactive
	}

	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", 0, fmt.Errorf("rand.Read -> %w", err)
	}
	token = hex.EncodeToString(raw)

	issuedAt := s.now()
	err = s.store.Put(ctx, token, repository.AccessToken{
		DisplayID: displayID,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.ttl),
	}, s.ttl)
	if err != nil {
		return "", 0, fmt.Errorf("s.store.Put -> %w", err)
	}

	return token, s.ttl, nil
}

// Validate returns the display the token is bound to. It does not consume
// the token; a token stays valid until its TTL elapses.
func (s *TokenService) Validate(ctx context.Context, token string) (displayID string, err error) {
	value, err := s.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return "", ErrTokenInvalid
		}

		return "", fmt.Errorf("s.store.Get -> %w", err)
	}

	// The store's TTL normally evicts first; the lazy re-check keeps
	// expiry correct regardless of the backing store.
	if s.now().After(value.ExpiresAt) {
		_ = s.store.Delete(ctx, token)
		return "", ErrTokenInvalid
	}

	return value.DisplayID, nil
}

// ValidateForDisplay additionally re-checks the token's display binding, for
// submissions that claim a display id.
func (s *TokenService) ValidateForDisplay(ctx context.Context, token, displayID string) error {
	boundTo, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}
	if boundTo != displayID {
		return ErrTokenInvalid
	}

	return nil
}

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

var (
	ErrRedemptionNotFound = repository.ErrRedemptionNotFound

	// ErrRedemptionInvalid covers unknown codes and identity mismatches
	// alike, so a found or guessed code cannot be probed.
	ErrRedemptionInvalid = errors.New("invalid redemption")
)

// codeAlphabet excludes visually ambiguous characters (0/O, 1/I).
const (
	codeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codePrefix      = "SPIN"
	codeGroupLength = 4
	codeGroupCount  = 2
)

type RedemptionStoreRepository interface {
	Upsert(ctx context.Context, redemption domain.Redemption) (domain.Redemption, error)
	FindByID(ctx context.Context, id string) (domain.Redemption, error)
	FindBySessionID(ctx context.Context, sessionID string) (domain.Redemption, error)
	FindByCode(ctx context.Context, code string) (domain.Redemption, error)
	MarkRedeemed(ctx context.Context, id, redeemedBy, notes string) (bool, error)
	FindByDisplay(ctx context.Context, displayID, status string, limit, offset int) ([]domain.Redemption, error)
	StatsByDisplay(ctx context.Context, displayID string) (domain.RedemptionStats, error)
}

// RedemptionService generates claim codes for completed non-negative
// sessions and handles verification and consumption.
type RedemptionService struct {
	repo RedemptionStoreRepository
}

func NewRedemptionService(repo RedemptionStoreRepository) *RedemptionService {
	return &RedemptionService{
		repo: repo,
	}
}

// IssueForSession runs on the first transition into completed. Negative
// outcomes never produce a code. Insert-or-update semantics make re-issuing
// for the same session idempotent.
func (s *RedemptionService) IssueForSession(ctx context.Context, session domain.Session) error {
	if session.Outcome == nil {
		return fmt.Errorf("session %v has no resolved outcome", session.ID)
	}
	if session.Outcome.IsNegative {
		return nil
	}

	// A session that already holds a code keeps it.
	if _, err := s.repo.FindBySessionID(ctx, session.ID); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrRedemptionNotFound) {
		return fmt.Errorf("s.repo.FindBySessionID -> %w", err)
	}

	var email, phone string
	if session.Player != nil {
		email = session.Player.EmailNormalized
		phone = session.Player.PhoneNormalized
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generateCode -> %w", err)
	}

	saved, err := s.repo.Upsert(ctx, domain.Redemption{
		SessionID:    session.ID,
		UserEmail:    email,
		UserPhone:    phone,
		OutcomeID:    session.Outcome.ID,
		OutcomeLabel: session.Outcome.Label,
		Code:         code,
	})
	if err != nil {
		return fmt.Errorf("s.repo.Upsert -> %w", err)
	}

	zap.L().Info("redemption issued",
		zap.String("sessionID", session.ID),
		zap.String("code", saved.Code))

	return nil
}

// Verify requires the code and both identity fields to match the stored
// normalized values before revealing anything about the redemption.
func (s *RedemptionService) Verify(ctx context.Context, email, phone, code string) (domain.Redemption, error) {
	emailNormalized, ok := NormalizeEmail(email)
	if !ok {
		return domain.Redemption{}, ErrRedemptionInvalid
	}
	phoneNormalized, ok := NormalizePhone(phone)
	if !ok {
		return domain.Redemption{}, ErrRedemptionInvalid
	}

	redemption, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRedemptionNotFound) {
			return domain.Redemption{}, ErrRedemptionInvalid
		}

		return domain.Redemption{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	if redemption.UserEmail != emailNormalized || redemption.UserPhone != phoneNormalized {
		zap.L().Warn("redemption verification identity mismatch",
			zap.String("redemptionID", redemption.ID))
		return domain.Redemption{}, ErrRedemptionInvalid
	}

	return redemption, nil
}

// MarkRedeemed flips the one-way consumed flag. Returns the refreshed row
// and whether this call performed the flip; re-marking reports already-used
// instead of erroring.
func (s *RedemptionService) MarkRedeemed(ctx context.Context, id, redeemedBy, notes string) (domain.Redemption, bool, error) {
	if redeemedBy == "" {
		redeemedBy = "Admin"
	}

	flipped, err := s.repo.MarkRedeemed(ctx, id, redeemedBy, notes)
	if err != nil {
		return domain.Redemption{}, false, fmt.Errorf("s.repo.MarkRedeemed -> %w", err)
	}

	redemption, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRedemptionNotFound) {
			return domain.Redemption{}, false, ErrRedemptionNotFound
		}

		return domain.Redemption{}, false, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return redemption, flipped, nil
}

func (s *RedemptionService) FindBySessionID(ctx context.Context, sessionID string) (domain.Redemption, error) {
	redemption, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return domain.Redemption{}, err
	}

	return redemption, nil
}

func (s *RedemptionService) List(ctx context.Context, displayID, status string, limit, offset int) ([]domain.Redemption, error) {
	redemptions, err := s.repo.FindByDisplay(ctx, displayID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByDisplay -> %w", err)
	}

	return redemptions, nil
}

func (s *RedemptionService) Stats(ctx context.Context, displayID string) (domain.RedemptionStats, error) {
	stats, err := s.repo.StatsByDisplay(ctx, displayID)
	if err != nil {
		return domain.RedemptionStats{}, fmt.Errorf("s.repo.StatsByDisplay -> %w", err)
	}

	return stats, nil
}

// generateCode produces codes like SPIN-A7KM-X2QR.
func generateCode() (string, error) {
	raw := make([]byte, codeGroupLength*codeGroupCount)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	code := codePrefix
	for i, b := range raw {
		if i%codeGroupLength == 0 {
			code += "-"
		}
		code += string(codeAlphabet[int(b)%len(codeAlphabet)])
	}

	return code, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository/dao"
)

var ErrRedemptionNotFound = dao.ErrRedemptionNotFound

type RedemptionDAO interface {
	Upsert(ctx context.Context, redemption dao.Redemption) (dao.Redemption, error)
	FindByID(ctx context.Context, id string) (dao.Redemption, error)
	FindBySessionID(ctx context.Context, sessionID string) (dao.Redemption, error)
	FindByCode(ctx context.Context, code string) (dao.Redemption, error)
	MarkRedeemed(ctx context.Context, id, redeemedBy, notes string) (bool, error)
	FindByDisplay(ctx context.Context, displayID, status string, limit, offset int) ([]dao.Redemption, error)
	StatsByDisplay(ctx context.Context, displayID string) (total, redeemed int64, err error)
}

type RedemptionRepository struct {
	dao RedemptionDAO
}

func NewRedemptionRepository(dao RedemptionDAO) *RedemptionRepository {
	return &RedemptionRepository{
		dao: dao,
	}
}

func (r *RedemptionRepository) Upsert(ctx context.Context, redemption domain.Redemption) (domain.Redemption, error) {
	saved, err := r.dao.Upsert(ctx, dao.Redemption{
		SessionID:    redemption.SessionID,
		UserEmail:    redemption.UserEmail,
		UserPhone:    redemption.UserPhone,
		OutcomeID:    redemption.OutcomeID,
		OutcomeLabel: redemption.OutcomeLabel,
		Code:         redemption.Code,
	})
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return redemptionDaoToDomain(saved), nil
}

func (r *RedemptionRepository) FindByID(ctx context.Context, id string) (domain.Redemption, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return redemptionDaoToDomain(found), nil
}

func (r *RedemptionRepository) FindBySessionID(ctx context.Context, sessionID string) (domain.Redemption, error) {
	found, err := r.dao.FindBySessionID(ctx, sessionID)
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("r.dao.FindBySessionID -> %w", err)
	}

	return redemptionDaoToDomain(found), nil
}

func (r *RedemptionRepository) FindByCode(ctx context.Context, code string) (domain.Redemption, error) {
	found, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Redemption{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return redemptionDaoToDomain(found), nil
}

func (r *RedemptionRepository) MarkRedeemed(ctx context.Context, id, redeemedBy, notes string) (bool, error) {
	flipped, err := r.dao.MarkRedeemed(ctx, id, redeemedBy, notes)
	if err != nil {
		return false, fmt.Errorf("r.dao.MarkRedeemed -> %w", err)
	}

	return flipped, nil
}

func (r *RedemptionRepository) FindByDisplay(ctx context.Context, displayID, status string, limit, offset int) ([]domain.Redemption, error) {
	found, err := r.dao.FindByDisplay(ctx, displayID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByDisplay -> %w", err)
	}

	redemptions := make([]domain.Redemption, 0, len(found))
	for _, rd := range found {
		redemptions = append(redemptions, redemptionDaoToDomain(rd))
	}

	return redemptions, nil
}

func (r *RedemptionRepository) StatsByDisplay(ctx context.Context, displayID string) (domain.RedemptionStats, error) {
	total, redeemed, err := r.dao.StatsByDisplay(ctx, displayID)
	if err != nil {
		return domain.RedemptionStats{}, fmt.Errorf("r.dao.StatsByDisplay -> %w", err)
	}

	return domain.RedemptionStats{
		Total:    total,
		Redeemed: redeemed,
		Pending:  total - redeemed,
	}, nil
}

func redemptionDaoToDomain(r dao.Redemption) domain.Redemption {
	return domain.Redemption{
		ID:           r.ID,
		SessionID:    r.SessionID,
		UserEmail:    r.UserEmail,
		UserPhone:    r.UserPhone,
		OutcomeID:    r.OutcomeID,
		OutcomeLabel: r.OutcomeLabel,
		Code:         r.Code,
		IsRedeemed:   r.IsRedeemed,
		RedeemedAt:   r.RedeemedAt,
		RedeemedBy:   r.RedeemedBy,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
	}
}

package repository

import (
	"context"
	"fmt"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository/dao"
)

var (
	ErrDisplayExists   = dao.ErrDisplayExists
	ErrDisplayNotFound = dao.ErrDisplayNotFound
)

type DisplayDAO interface {
	Insert(ctx context.Context, display dao.DisplayInstance) (dao.DisplayInstance, error)
	FindByID(ctx context.Context, id string) (dao.DisplayInstance, error)
	FindAll(ctx context.Context) ([]dao.DisplayInstance, error)
	Update(ctx context.Context, id string, fields map[string]any) (dao.DisplayInstance, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (totalPlayers, totalSessions, completed int64, err error)
}

type DisplayRepository struct {
	dao DisplayDAO
}

func NewDisplayRepository(dao DisplayDAO) *DisplayRepository {
	return &DisplayRepository{
		dao: dao,
	}
}

func (r *DisplayRepository) Create(ctx context.Context, display domain.DisplayInstance) (domain.DisplayInstance, error) {
	created, err := r.dao.Insert(ctx, dao.DisplayInstance{
		ID:               display.ID,
		LocationName:     display.LocationName,
		QRCodeURL:        display.QRCodeURL,
		IsActive:         display.IsActive,
		Timezone:         display.Timezone,
		LogoURL:          display.LogoURL,
		BackgroundConfig: display.BackgroundConfig,
	})
	if err != nil {
		return domain.DisplayInstance{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *DisplayRepository) FindByID(ctx context.Context, id string) (domain.DisplayInstance, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.DisplayInstance{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *DisplayRepository) FindAll(ctx context.Context) ([]domain.DisplayInstance, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	displays := make([]domain.DisplayInstance, 0, len(found))
	for _, d := range found {
		displays = append(displays, r.daoToDomain(d))
	}

	return displays, nil
}

func (r *DisplayRepository) Update(ctx context.Context, id string, fields map[string]any) (domain.DisplayInstance, error) {
	updated, err := r.dao.Update(ctx, id, fields)
	if err != nil {
		return domain.DisplayInstance{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *DisplayRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *DisplayRepository) Stats(ctx context.Context, id string) (domain.DisplayStats, error) {
	players, sessions, completed, err := r.dao.Stats(ctx, id)
	if err != nil {
		return domain.DisplayStats{}, fmt.Errorf("r.dao.Stats -> %w", err)
	}

	return domain.DisplayStats{
		TotalPlayers:      players,
		TotalSessions:     sessions,
		CompletedSessions: completed,
	}, nil
}

func (r *DisplayRepository) daoToDomain(d dao.DisplayInstance) domain.DisplayInstance {
	return domain.DisplayInstance{
		ID:               d.ID,
		LocationName:     d.LocationName,
		QRCodeURL:        d.QRCodeURL,
		IsActive:         d.IsActive,
		Timezone:         d.Timezone,
		LogoURL:          d.LogoURL,
		BackgroundConfig: d.BackgroundConfig,
		CreatedAt:        d.CreatedAt,
	}
}

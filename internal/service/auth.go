package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

var (
	ErrAdminEmailExists = repository.ErrAdminEmailExists
	ErrAdminNotFound    = repository.ErrAdminNotFound
	ErrWrongPassword    = errors.New("wrong password")
)

type AuthAdminRepository interface {
	Create(ctx context.Context, admin domain.AdminUser) (domain.AdminUser, error)
	FindByID(ctx context.Context, id uint) (domain.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (domain.AdminUser, error)
}

type AuthService struct {
	repo AuthAdminRepository
}

func NewAuthService(repo AuthAdminRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) Signup(ctx context.Context, admin domain.AdminUser) (domain.AdminUser, error) {
	if err := s.checkEmailExists(ctx, admin.Email); err != nil {
		return domain.AdminUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AdminUser{}, err
	}
	admin.Password = string(hash)

	created, err := s.repo.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, repository.ErrAdminEmailExists) {
			return domain.AdminUser{}, ErrAdminEmailExists
		}

		return domain.AdminUser{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.AdminUser, error) {
	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return domain.AdminUser{}, ErrAdminNotFound
		}

		return domain.AdminUser{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return domain.AdminUser{}, ErrWrongPassword
	}

	return admin, nil
}

func (s *AuthService) checkEmailExists(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrAdminEmailExists
	}
	if !errors.Is(err, repository.ErrAdminNotFound) {
		return fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	return nil
}

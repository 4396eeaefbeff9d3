package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrAdminEmailExists = errors.New("admin user already exists")
	ErrAdminNotFound    = errors.New("admin user not found")
)

type AdminUser struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null"`
	Password  string `gorm:"not null"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AdminDAO struct {
	db *gorm.DB
}

func NewAdminDAO(db *gorm.DB) *AdminDAO {
	return &AdminDAO{
		db: db,
	}
}

func (d *AdminDAO) Insert(ctx context.Context, admin AdminUser) (AdminUser, error) {
	result := d.db.WithContext(ctx).Create(&admin)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) &&
			pgErr.Code == pgerrcode.UniqueViolation &&
			strings.Contains(pgErr.Message, "email") {
			return AdminUser{}, ErrAdminEmailExists
		}

		return AdminUser{}, result.Error
	}

	return admin, nil
}

func (d *AdminDAO) FindByID(ctx context.Context, id uint) (AdminUser, error) {
	var admin AdminUser

	result := d.db.WithContext(ctx).First(&admin, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AdminUser{}, ErrAdminNotFound
		}

		return AdminUser{}, result.Error
	}

	return admin, nil
}

func (d *AdminDAO) FindByEmail(ctx context.Context, email string) (AdminUser, error) {
	var admin AdminUser

	result := d.db.WithContext(ctx).First(&admin, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AdminUser{}, ErrAdminNotFound
		}

		return AdminUser{}, result.Error
	}

	return admin, nil
}

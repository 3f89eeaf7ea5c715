package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"updown-market/internal/models"
)

// FindUserByWallet returns nil without error when the wallet is unknown
func (r *Repository) FindUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// FindUserByID retrieves a user by primary key
func (r *Repository) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// TouchLogin records a successful sign in
func (r *Repository) TouchLogin(ctx context.Context, user *models.User, at time.Time) error {
	user.LastLoginAt = &at
	return r.db.WithContext(ctx).Model(user).Update("last_login_at", at).Error
}

package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"updown-market/internal/models"
	"updown-market/internal/utils"
)

// UserStore is the slice of the repository the auth flow needs.
type UserStore interface {
	FindUserByWallet(ctx context.Context, wallet string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	TouchLogin(ctx context.Context, user *models.User, at time.Time) error
}

const nicknameAttempts = 5

// AuthService handles authentication business logic
type AuthService struct {
	users    UserStore
	log      *zap.Logger
	nickname func() (string, error)
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		log:      log,
		nickname: utils.GenerateNickname,
		now:      time.Now,
	}
}

// ProcessWalletLogin finds or creates a user by wallet address
func (s *AuthService) ProcessWalletLogin(ctx context.Context, walletAddress string) (*models.User, error) {
	user, err := s.users.FindUserByWallet(ctx, walletAddress)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user, err = s.createUser(ctx, walletAddress)
		if err != nil {
			return nil, err
		}
		s.log.Info("new user created", zap.String("wallet", walletAddress), zap.Uint("user_id", user.ID))
	} else {
		s.log.Info("user logged in", zap.String("wallet", walletAddress), zap.Uint("user_id", user.ID))
	}

	if err := s.users.TouchLogin(ctx, user, s.now()); err != nil {
		s.log.Warn("failed to record login time", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// createUser retries with a fresh nickname when the generated one is taken.
func (s *AuthService) createUser(ctx context.Context, walletAddress string) (*models.User, error) {
	var lastErr error
	for i := 0; i < nicknameAttempts; i++ {
		nickname, err := s.nickname()
		if err != nil {
			return nil, err
		}

		user := &models.User{WalletAddress: walletAddress, Nickname: nickname}
		if lastErr = s.users.CreateUser(ctx, user); lastErr == nil {
			return user, nil
		}

		// A concurrent login for the same wallet may have won the race.
		if existing, err := s.users.FindUserByWallet(ctx, walletAddress); err == nil && existing != nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("failed to create user: %w", lastErr)
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.FindUserByID(ctx, userID)
}

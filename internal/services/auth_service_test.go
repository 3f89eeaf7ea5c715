package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"updown-market/internal/repository"
)

func TestProcessWalletLogin_CreatesThenFinds(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewRepository(setupTestDB(t)), zap.NewNop())

	first, err := svc.ProcessWalletLogin(ctx, "wallet-a")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.NotEmpty(t, first.Nickname)
	assert.NotNil(t, first.LastLoginAt)

	second, err := svc.ProcessWalletLogin(ctx, "wallet-a")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Nickname, second.Nickname)
}

func TestProcessWalletLogin_RetriesTakenNickname(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewRepository(setupTestDB(t)), zap.NewNop())

	names := []string{"Calm_Bull_0001", "Calm_Bull_0001", "Sharp_Bear_0002"}
	calls := 0
	svc.nickname = func() (string, error) {
		name := names[calls]
		calls++
		return name, nil
	}

	a, err := svc.ProcessWalletLogin(ctx, "wallet-a")
	require.NoError(t, err)
	b, err := svc.ProcessWalletLogin(ctx, "wallet-b")
	require.NoError(t, err)

	assert.Equal(t, "Calm_Bull_0001", a.Nickname)
	assert.Equal(t, "Sharp_Bear_0002", b.Nickname)
	assert.Equal(t, 3, calls)
}

func TestProcessWalletLogin_GivesUp(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewRepository(setupTestDB(t)), zap.NewNop())
	svc.nickname = func() (string, error) { return "Same_Name_0000", nil }

	_, err := svc.ProcessWalletLogin(ctx, "wallet-a")
	require.NoError(t, err)

	_, err = svc.ProcessWalletLogin(ctx, "wallet-b")
	assert.Error(t, err)

	svc.nickname = func() (string, error) { return "", fmt.Errorf("entropy exhausted") }
	_, err = svc.ProcessWalletLogin(ctx, "wallet-c")
	assert.ErrorContains(t, err, "entropy")
}

package handlers

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"updown-market/internal/auth"
	"updown-market/internal/blockchain"
	"updown-market/internal/database"
	"updown-market/internal/engine"
	"updown-market/internal/observability"
	"updown-market/internal/repository"
	"updown-market/internal/services"
)

type testWallet struct {
	address string
	priv    ed25519.PrivateKey
}

func newTestWallet(t *testing.T) testWallet {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return testWallet{address: base58.Encode(pub), priv: priv}
}

func (w testWallet) sign(msg string) string {
	return base58.Encode(ed25519.Sign(w.priv, []byte(msg)))
}

type testServer struct {
	router *gin.Engine
	market *services.MarketService
}

func setupServer(t *testing.T, owner testWallet) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.InitJWT("handler-test-secret")

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))

	log := zap.NewNop()
	metrics := observability.NewMetrics("test")
	repo := repository.NewRepository(db)
	market, err := services.NewMarketService(context.Background(), repo, engine.Identity(owner.address), log, metrics)
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r,
		NewMarketHandler(market, log),
		NewAuthHandler(services.NewAuthService(repo, log), log),
		auth.AuthMiddleware(log),
		metrics.Handler(),
	)
	return &testServer{router: r, market: market}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func (s *testServer) login(t *testing.T, w testWallet) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/auth/wallet", "", map[string]string{
		"wallet_address": w.address,
		"signature":      w.sign(blockchain.LoginMessage),
	})
	require.Equal(t, http.StatusOK, code, body)
	return body["token"].(string)
}

func (s *testServer) advance(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.market.Advance(context.Background())
		require.NoError(t, err)
	}
}

func TestWalletLogin(t *testing.T) {
	owner := newTestWallet(t)
	srv := setupServer(t, owner)
	alice := newTestWallet(t)

	token := srv.login(t, alice)
	assert.NotEmpty(t, token)

	code, body := srv.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, alice.address, body["user"].(map[string]any)["wallet_address"])

	code, _ = srv.do(t, http.MethodPost, "/auth/wallet", "", map[string]string{
		"wallet_address": alice.address,
		"signature":      alice.sign("some other message"),
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = srv.do(t, http.MethodPost, "/auth/wallet", "", map[string]string{
		"wallet_address": "not-a-wallet",
		"signature":      alice.sign(blockchain.LoginMessage),
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBettingFlow(t *testing.T) {
	owner := newTestWallet(t)
	srv := setupServer(t, owner)
	alice, bob := newTestWallet(t), newTestWallet(t)
	aliceToken, bobToken := srv.login(t, alice), srv.login(t, bob)

	code, body := srv.do(t, http.MethodPost, "/api/bets", aliceToken, map[string]any{"direction": 1, "stake": 2_000_000})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "UP", body["data"].(map[string]any)["direction"])

	code, _ = srv.do(t, http.MethodPost, "/api/bets", bobToken, map[string]any{"direction": 0, "stake": 1_000_000})
	require.Equal(t, http.StatusCreated, code)

	code, body = srv.do(t, http.MethodGet, "/api/rounds/current", "", nil)
	require.Equal(t, http.StatusOK, code)
	round := body["data"].(map[string]any)
	assert.Equal(t, float64(3_000_000), round["total_pool"])
	assert.Equal(t, "2000.00", round["start_price_display"])
	assert.Equal(t, "ACTIVE", round["state"])
	assert.Equal(t, "1.4700", body["multiple_up"])
	assert.Equal(t, "2.9400", body["multiple_down"])
	assert.Equal(t, float64(20), body["ticks_left"])

	srv.advance(t, 25)

	code, body = srv.do(t, http.MethodGet, "/api/rounds/history", "", nil)
	require.Equal(t, http.StatusOK, code)
	history := body["data"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, "UP", history[0].(map[string]any)["winning_direction"])

	code, body = srv.do(t, http.MethodGet, "/api/users/"+alice.address+"/claimable", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2_940_000), body["data"].(map[string]any)["total_claimable"])

	code, body = srv.do(t, http.MethodPost, "/api/claims", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = srv.do(t, http.MethodPost, "/api/claims", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])

	code, body = srv.do(t, http.MethodGet, "/api/users/"+alice.address+"/bets", "", nil)
	require.Equal(t, http.StatusOK, code)
	bets := body["data"].([]any)
	require.Len(t, bets, 1)
	assert.Equal(t, true, bets[0].(map[string]any)["claimed"])

	code, body = srv.do(t, http.MethodGet, "/api/users/"+alice.address+"/transfers", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["count"])

	code, body = srv.do(t, http.MethodGet, "/api/rounds/results", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])
}

func TestPlaceBet_RejectionIsReported(t *testing.T) {
	srv := setupServer(t, newTestWallet(t))
	token := srv.login(t, newTestWallet(t))

	code, body := srv.do(t, http.MethodPost, "/api/bets", token, map[string]any{"direction": 1, "stake": 10})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "stake_out_of_range", body["reason"])
	assert.Equal(t, float64(10), body["refunded"])

	code, body = srv.do(t, http.MethodPost, "/api/bets", token, map[string]any{"direction": 2, "stake": 2_000_000})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "invalid_direction", body["reason"])

	code, _ = srv.do(t, http.MethodPost, "/api/bets", token, map[string]any{"stake": 2_000_000})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := setupServer(t, newTestWallet(t))

	for _, path := range []string{"/api/bets", "/api/rounds/resolve", "/api/claims", "/api/fees/withdraw"} {
		code, _ := srv.do(t, http.MethodPost, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}
}

func TestResolveAndWithdrawFees(t *testing.T) {
	owner := newTestWallet(t)
	srv := setupServer(t, owner)
	alice, bob := newTestWallet(t), newTestWallet(t)
	ownerToken, aliceToken, bobToken := srv.login(t, owner), srv.login(t, alice), srv.login(t, bob)

	_, _ = srv.do(t, http.MethodPost, "/api/bets", aliceToken, map[string]any{"direction": 1, "stake": 2_000_000})
	_, _ = srv.do(t, http.MethodPost, "/api/bets", bobToken, map[string]any{"direction": 0, "stake": 1_000_000})

	srv.advance(t, 20)
	code, body := srv.do(t, http.MethodPost, "/api/rounds/resolve", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NONE", body["winning_direction"])
	assert.Equal(t, "2000.00", body["start_price_display"])

	srv.advance(t, 1)
	code, body = srv.do(t, http.MethodPost, "/api/rounds/resolve", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "UP", body["winning_direction"])

	code, body = srv.do(t, http.MethodPost, "/api/fees/withdraw", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])

	code, body = srv.do(t, http.MethodPost, "/api/fees/withdraw", ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(60_000), body["data"].(map[string]any)["amount"])

	code, body = srv.do(t, http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["data"].(map[string]any)["collected_fees"])
}

func TestUserRoutesValidateAddress(t *testing.T) {
	srv := setupServer(t, newTestWallet(t))
	code, _ := srv.do(t, http.MethodGet, "/api/users/nope/bets", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := setupServer(t, newTestWallet(t))
	srv.advance(t, 3)

	code, body := srv.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["tick"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_engine_current_tick 3")
}

func TestPayoutMultiple(t *testing.T) {
	assert.Equal(t, "0", payoutMultiple(0, 0))
	assert.Equal(t, "0.9800", payoutMultiple(5_000_000, 5_000_000))
	assert.Equal(t, "2662.00", formatPrice(266_200_000))
}

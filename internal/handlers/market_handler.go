package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"updown-market/internal/auth"
	"updown-market/internal/blockchain"
	"updown-market/internal/engine"
	"updown-market/internal/services"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type MarketHandler struct {
	market *services.MarketService
	log    *zap.Logger
}

func NewMarketHandler(market *services.MarketService, log *zap.Logger) *MarketHandler {
	return &MarketHandler{market: market, log: log}
}

// GetCurrentRound returns the open round with live payout multiples
// GET /api/rounds/current
func (h *MarketHandler) GetCurrentRound(c *gin.Context) {
	out := h.market.CurrentRound()
	r := out.Round

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"data":          toRoundResponse(r),
		"current_tick":  out.CurrentTick,
		"bet_count":     out.BetCount,
		"ticks_left":    ticksLeft(r, out.CurrentTick),
		"multiple_up":   payoutMultiple(r.TotalPool(), r.PoolUp),
		"multiple_down": payoutMultiple(r.TotalPool(), r.PoolDown),
	})
}

// GetRoundHistory returns the recent settled rounds, oldest first
// GET /api/rounds/history
func (h *MarketHandler) GetRoundHistory(c *gin.Context) {
	out := h.market.RoundHistory()

	rounds := make([]RoundResponse, 0, len(out.History))
	for _, r := range out.History {
		rounds = append(rounds, toRoundResponse(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"data":               rounds,
		"count":              len(rounds),
		"total_rounds_count": out.TotalRoundsCount,
	})
}

// GetRoundResults pages through every settled round on record
// GET /api/rounds/results
func (h *MarketHandler) GetRoundResults(c *gin.Context) {
	limit := listLimit(c)
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	results, err := h.market.RoundResults(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error("failed to list round results", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch round results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
		"count":   len(results),
	})
}

// GetStats returns the market-wide counters
// GET /api/stats
func (h *MarketHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.market.Stats(),
	})
}

// GetUserBets returns a wallet's recorded bets
// GET /api/users/:address/bets
func (h *MarketHandler) GetUserBets(c *gin.Context) {
	wallet, ok := walletParam(c)
	if !ok {
		return
	}

	out := h.market.UserBets(wallet)
	bets := make([]BetResponse, 0, len(out.Bets))
	for _, b := range out.Bets {
		bets = append(bets, toBetResponse(b))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bets,
		"count":   out.BetCount,
	})
}

// GetUserClaimable returns what a wallet can collect right now
// GET /api/users/:address/claimable
func (h *MarketHandler) GetUserClaimable(c *gin.Context) {
	wallet, ok := walletParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.market.UserClaimable(wallet),
	})
}

// GetUserTransfers returns a wallet's journaled transfers, newest first
// GET /api/users/:address/transfers
func (h *MarketHandler) GetUserTransfers(c *gin.Context) {
	wallet, ok := walletParam(c)
	if !ok {
		return
	}

	transfers, err := h.market.Transfers(c.Request.Context(), wallet, listLimit(c))
	if err != nil {
		h.log.Error("failed to list transfers", zap.String("wallet", string(wallet)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transfers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transfers,
		"count":   len(transfers),
	})
}

// PlaceBetRequest carries the side and the value attached to the bet.
type PlaceBetRequest struct {
	Direction *uint8 `json:"direction" binding:"required"`
	Stake     uint64 `json:"stake"`
}

// PlaceBet wagers on the open round. A rejected bet is refunded in full.
// POST /api/bets
func (h *MarketHandler) PlaceBet(c *gin.Context) {
	wallet, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.market.PlaceBet(c.Request.Context(), wallet, engine.Direction(*req.Direction), req.Stake)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place bet"})
		return
	}

	if !out.Accepted() {
		c.JSON(http.StatusOK, gin.H{
			"success":  false,
			"reason":   out.Rejection.String(),
			"refunded": req.Stake,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"data":            toBetResponse(out.Bet),
		"stored_all_time": out.StoredAllTime,
	})
}

// ResolveRound settles the locked round on request
// POST /api/rounds/resolve
func (h *MarketHandler) ResolveRound(c *gin.Context) {
	wallet, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	out, err := h.market.ResolveRound(c.Request.Context(), wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve round"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             out.Resolved,
		"winning_direction":   out.WinningDirection.String(),
		"total_payout":        out.TotalPayout,
		"start_price":         out.StartPrice,
		"start_price_display": formatPrice(out.StartPrice),
		"end_price":           out.EndPrice,
	})
}

// ClaimWinnings pays out every settled winning bet of the caller
// POST /api/claims
func (h *MarketHandler) ClaimWinnings(c *gin.Context) {
	wallet, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	out, err := h.market.ClaimWinnings(c.Request.Context(), wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim winnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": out.Success,
		"data":    out,
	})
}

// WithdrawFees sends collected fees to the owner. Other callers get a zero result.
// POST /api/fees/withdraw
func (h *MarketHandler) WithdrawFees(c *gin.Context) {
	wallet, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	out, err := h.market.WithdrawFees(c.Request.Context(), wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw fees"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": out.Success,
		"data":    out,
	})
}

// Health reports liveness and the market clock
// GET /health
func (h *MarketHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"tick":   h.market.Tick(),
	})
}

func walletParam(c *gin.Context) (engine.Identity, bool) {
	wallet, err := blockchain.ParseWallet(c.Param("address"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return "", false
	}
	return wallet, true
}

func listLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func ticksLeft(r engine.Round, tick uint32) uint32 {
	if r.State != engine.RoundActive || tick >= r.EndTick {
		return 0
	}
	return r.EndTick - tick
}

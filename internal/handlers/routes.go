package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the public, authenticated and operational endpoints.
func RegisterRoutes(r *gin.Engine, market *MarketHandler, authHandler *AuthHandler, requireAuth gin.HandlerFunc, metrics http.Handler) {
	r.GET("/health", market.Health)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/wallet", authHandler.WalletLogin)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", requireAuth, authHandler.GetMe)
	}

	api := r.Group("/api")
	{
		api.GET("/rounds/current", market.GetCurrentRound)
		api.GET("/rounds/history", market.GetRoundHistory)
		api.GET("/rounds/results", market.GetRoundResults)
		api.GET("/stats", market.GetStats)
		api.GET("/users/:address/bets", market.GetUserBets)
		api.GET("/users/:address/claimable", market.GetUserClaimable)
		api.GET("/users/:address/transfers", market.GetUserTransfers)
	}

	protected := api.Group("")
	protected.Use(requireAuth)
	{
		protected.POST("/bets", market.PlaceBet)
		protected.POST("/rounds/resolve", market.ResolveRound)
		protected.POST("/claims", market.ClaimWinnings)
		protected.POST("/fees/withdraw", market.WithdrawFees)
	}
}

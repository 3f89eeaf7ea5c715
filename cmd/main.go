package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"updown-market/internal/auth"
	"updown-market/internal/blockchain"
	"updown-market/internal/config"
	"updown-market/internal/database"
	"updown-market/internal/handlers"
	"updown-market/internal/jobs"
	"updown-market/internal/logger"
	"updown-market/internal/observability"
	"updown-market/internal/repository"
	"updown-market/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	owner, err := blockchain.ParseWallet(cfg.App.OwnerWallet)
	if err != nil {
		zl.Fatal("invalid OWNER_WALLET", zap.Error(err))
	}

	auth.InitJWT(cfg.App.JWTSecret)

	if err := database.Connect(cfg.Database.Driver, cfg.GetDSN(), zl); err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(database.GetDB(), zl); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics("updown_market")
	repo := repository.NewRepository(database.GetDB())

	market, err := services.NewMarketService(baseCtx, repo, owner, zl, metrics)
	if err != nil {
		zl.Fatal("failed to start market", zap.Error(err))
	}
	authService := services.NewAuthService(repo, zl)

	var ticker *jobs.RoundTicker
	if cfg.Engine.AutoAdvance {
		ticker, err = jobs.NewRoundTicker(baseCtx, market, cfg.Engine.TickSpec, zl)
		if err != nil {
			zl.Fatal("invalid ENGINE_TICK_SPEC", zap.String("spec", cfg.Engine.TickSpec), zap.Error(err))
		}
		ticker.Start()
	} else {
		zl.Warn("automatic clock disabled, rounds will not advance")
	}

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.RegisterRoutes(router,
		handlers.NewMarketHandler(market, zl),
		handlers.NewAuthHandler(authService, zl),
		auth.AuthMiddleware(zl),
		metrics.Handler(),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zl.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("owner", string(owner)),
			zap.Uint32("tick", market.Tick()))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-baseCtx.Done()
	zl.Info("shutting down server")

	if ticker != nil {
		ticker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	zl.Info("server exited")
}

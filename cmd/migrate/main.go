package main

import (
	"log"

	"go.uber.org/zap"

	"updown-market/internal/config"
	"updown-market/internal/database"
	"updown-market/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(cfg.Database.Driver, cfg.GetDSN())
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(db, zl); err != nil {
		zl.Fatal("failed to apply migrations", zap.Error(err))
	}
	zl.Info("schema is up to date", zap.Int("tables", len(database.Models())))
}

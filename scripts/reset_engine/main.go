package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Wipes the stored market so the next server start initializes a fresh one.
// Users are kept. Without -confirm it only prints what would be removed.
func main() {
	confirm := flag.Bool("confirm", false, "actually delete the market state")
	keepJournal := flag.Bool("keep-journal", false, "keep ledger_transfers and round_results")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "updown_market"),
		getEnv("DB_SSLMODE", "disable"),
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	tables := []string{"engine_snapshots"}
	if !*keepJournal {
		tables = append(tables, "ledger_transfers", "round_results")
	}

	for _, table := range tables {
		var n int64
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			log.Fatalf("Failed to count %s: %v", table, err)
		}
		log.Printf("%s: %d rows", table, n)
	}

	if !*confirm {
		log.Println("Dry run, pass -confirm to delete")
		return
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			_ = tx.Rollback()
			log.Fatalf("Failed to clear %s: %v", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Market state removed, restart the server to open round 1")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

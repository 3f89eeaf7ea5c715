package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      LogConfig      `mapstructure:"log"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Env         string `mapstructure:"env"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	OwnerWallet string `mapstructure:"owner_wallet"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// EngineConfig controls the market clock.
type EngineConfig struct {
	// TickSpec is a cron spec (seconds field enabled) for advancing the clock.
	TickSpec    string `mapstructure:"tick_spec"`
	AutoAdvance bool   `mapstructure:"auto_advance"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"app.env":                "APP_ENV",
	"app.jwt_secret":         "JWT_SECRET",
	"app.owner_wallet":       "OWNER_WALLET",
	"server.port":            "SERVER_PORT",
	"server.cors_origins":    "CORS_ORIGINS",
	"database.driver":        "DB_DRIVER",
	"database.host":          "DB_HOST",
	"database.port":          "DB_PORT",
	"database.user":          "DB_USER",
	"database.password":      "DB_PASSWORD",
	"database.name":          "DB_NAME",
	"database.sslmode":       "DB_SSLMODE",
	"database.sqlite_path":   "DB_SQLITE_PATH",
	"engine.tick_spec":       "ENGINE_TICK_SPEC",
	"engine.auto_advance":    "ENGINE_AUTO_ADVANCE",
	"log.level":              "LOG_LEVEL",
	"log.encoding":           "LOG_ENCODING",
	"log.development":        "LOG_DEVELOPMENT",
	"log.sampling":           "LOG_SAMPLING",
	"log.disable_caller":     "LOG_DISABLE_CALLER",
	"log.disable_stacktrace": "LOG_DISABLE_STACKTRACE",
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.jwt_secret", "")
	v.SetDefault("app.owner_wallet", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "updown_market")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "updown_market.db")
	v.SetDefault("engine.tick_spec", "@every 1s")
	v.SetDefault("engine.auto_advance", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	config.Server.CORSOrigins = splitList(config.Server.CORSOrigins)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.App.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.App.OwnerWallet == "" {
		return fmt.Errorf("OWNER_WALLET is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Engine.TickSpec == "" {
		return fmt.Errorf("ENGINE_TICK_SPEC is required")
	}
	return nil
}

// GetDSN returns the connection string for the configured driver
func (c *Config) GetDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// splitList accepts both a real list and a single comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

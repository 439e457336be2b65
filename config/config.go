package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Env         string `env:"APP_ENV" envDefault:"development"`
		Port        string `env:"PORT"    envDefault:"8088"`
		FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
		LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	}
	DB struct {
		Driver   string `env:"DB_DRIVER"   envDefault:"postgres"`
		Host     string `env:"DB_HOST"     envDefault:"localhost"`
		Port     string `env:"DB_PORT"     envDefault:"5432"`
		User     string `env:"DB_USER"     envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:"password"`
		Name     string `env:"DB_NAME"     envDefault:"fantasy_db"`
		SSLMode  string `env:"DB_SSLMODE"  envDefault:"disable"`
	}
	JWT struct {
		AccessTokenSecret        string `env:"JWT_ACCESS_TOKEN_SECRET"  envDefault:"supersecret"`
		AccessTokenExpiryMinutes int    `env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES" envDefault:"60"`
	}
	Game struct {
		RulesFile          string `env:"RULES_FILE" envDefault:"config/rules.yaml"`
		SweepSchedule      string `env:"GAMEWEEK_SWEEP_SCHEDULE" envDefault:"@every 1m"`
		RecomputeWorkers   int    `env:"RECOMPUTE_WORKERS" envDefault:"8"`
		TxMaxRetries       int    `env:"TX_MAX_RETRIES" envDefault:"3"`
		RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	}
}

// AccessTokenExpiry is the lifetime of issued access tokens.
func (c *Config) AccessTokenExpiry() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiryMinutes) * time.Minute
}

// Global DB instance, set by ConnectDB. It stays nil with the memory driver.
var DB *gorm.DB

var appConfig *Config
var once sync.Once

// LoadConfig loads configuration from .env and the process environment.
func LoadConfig() (*Config, error) {
	// .env is optional; production sets variables directly.
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on system environment variables")
	}

	cfg := &Config{}

	// --- App Configuration ---
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("PORT", "8088")
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")

	// --- Database Configuration ---
	cfg.DB.Driver = strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "password")
	cfg.DB.Name = getEnv("DB_NAME", "fantasy_db")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	if cfg.DB.Driver != DriverPostgres && cfg.DB.Driver != DriverMemory {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: expected %s or %s", cfg.DB.Driver, DriverPostgres, DriverMemory)
	}

	// --- JWT Configuration ---
	cfg.JWT.AccessTokenSecret = getEnv("JWT_ACCESS_TOKEN_SECRET", "your-very-strong-access-secret")

	var err error
	cfg.JWT.AccessTokenExpiryMinutes, err = getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY_MINUTES: %w", err)
	}

	// --- Game Configuration ---
	cfg.Game.RulesFile = getEnv("RULES_FILE", "config/rules.yaml")
	cfg.Game.SweepSchedule = getEnv("GAMEWEEK_SWEEP_SCHEDULE", "@every 1m")
	if cfg.Game.RecomputeWorkers, err = getEnvAsInt("RECOMPUTE_WORKERS", 8); err != nil {
		return nil, fmt.Errorf("invalid RECOMPUTE_WORKERS: %w", err)
	}
	if cfg.Game.TxMaxRetries, err = getEnvAsInt("TX_MAX_RETRIES", 3); err != nil {
		return nil, fmt.Errorf("invalid TX_MAX_RETRIES: %w", err)
	}
	if cfg.Game.RateLimitPerMinute, err = getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	if cfg.JWT.AccessTokenSecret == "your-very-strong-access-secret" {
		logrus.Warn("Using default JWT secret. Set JWT_ACCESS_TOKEN_SECRET for production.")
	}
	if cfg.DB.Password == "password" && cfg.App.Env == "production" {
		logrus.Warn("Using default DB password in production. Set DB_PASSWORD.")
	}

	appConfig = cfg
	return cfg, nil
}

// NewLogger builds the application logger: JSON in production, text elsewhere.
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.App.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.App.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// ConnectDB establishes a connection to the database using the provided configuration.
// It sets the global DB variable.
func ConnectDB(dbCfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		dbCfg.DB.Host,
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Name,
		dbCfg.DB.Port,
		dbCfg.DB.SSLMode,
	)

	gormConfig := &gorm.Config{}
	if dbCfg.App.Env == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = gormDB
	logrus.WithField("host", dbCfg.DB.Host).Info("Successfully connected to database")
	return gormDB, nil
}

// Initialize loads the configuration once and connects to postgres when it
// is the configured driver.
func Initialize() error {
	var loadErr error
	once.Do(func() {
		loadedCfg, err := LoadConfig()
		if err != nil {
			loadErr = fmt.Errorf("failed to load configuration: %w", err)
			return
		}
		appConfig = loadedCfg

		if appConfig.DB.Driver != DriverPostgres {
			return
		}
		if _, err = ConnectDB(*appConfig); err != nil {
			loadErr = fmt.Errorf("failed to connect to database during initialization: %w", err)
		}
	})
	return loadErr
}

// GetConfig returns the loaded application configuration.
// It panics if Initialize has not run.
func GetConfig() *Config {
	if appConfig == nil {
		panic("configuration not loaded: call config.Initialize() first")
	}
	return appConfig
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got '%s'", key, valueStr)
	}
	return value, nil
}

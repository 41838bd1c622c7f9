package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds every setting read from the environment.
type Config struct {
	Port       string
	GinMode    string
	DBDriver   string
	DBDSN      string
	JWTSecret  string
	Timezone   string
	CORSOrigin string

	RemoteBaseURL      string
	RemoteAPIKey       string
	RemoteRestaurantID string
	RemoteWidgetURL    string
	RemoteSyncTimeout  time.Duration

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	AdminRecipients []string

	SheetWebhookURL string
	SheetID         string
	SheetAPIKey     string

	RedisAddr          string
	CompletionInterval time.Duration

	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found, using process environment")
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		GinMode:    os.Getenv("GIN_MODE"),
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:      getEnv("DB_DSN", "restaurant.db"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Timezone:   getEnv("TIMEZONE", "UTC"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),

		RemoteBaseURL:      os.Getenv("REMOTE_BOOKING_BASE_URL"),
		RemoteAPIKey:       os.Getenv("REMOTE_BOOKING_API_KEY"),
		RemoteRestaurantID: os.Getenv("REMOTE_BOOKING_RESTAURANT_ID"),
		RemoteWidgetURL:    os.Getenv("REMOTE_BOOKING_WIDGET_URL"),
		RemoteSyncTimeout:  getDuration("REMOTE_SYNC_TIMEOUT", 8*time.Second),

		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getInt("SMTP_PORT", 587),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		AdminRecipients: splitList(os.Getenv("NOTIFY_ADMIN_EMAILS")),

		SheetWebhookURL: os.Getenv("SHEET_WEBHOOK_URL"),
		SheetID:         os.Getenv("SHEET_ID"),
		SheetAPIKey:     os.Getenv("SHEET_API_KEY"),

		RedisAddr:          os.Getenv("REDIS_ADDR"),
		CompletionInterval: getDuration("COMPLETION_INTERVAL", 5*time.Minute),

		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		utils.InfoLogger.Println("Warning: JWT_SECRET not set, tokens are signed with a development secret")
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg
}

// Location returns the restaurant's time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid TIMEZONE %q, using UTC: %v", c.Timezone, err)
		return time.UTC
	}
	return loc
}

// InitDB opens the database selected by DB_DRIVER.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	logLevel := logger.Warn
	if cfg.GinMode != "release" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == "sqlite" {
		// sqlite allows a single writer; a single connection keeps
		// transactions from failing with "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	utils.InfoLogger.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CORSOrigins splits CORS_ORIGIN on commas.
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSOrigin)
}

package config

import (
	"os"
	"strconv"
	"time"

	"raspadinha_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Payment provider selection and credentials. Provider is one of
	// "betpaym" or "sampabank", constructed once at startup.
	PixProvider       string
	PixAPIKey         string
	PixAPISecret      string
	PixBaseURL        string
	PixWebhookSecret  string
	PixCallbackURL    string
	ChargeExpiresIn   time.Duration
	SettlePollEvery   time.Duration

	// Wallet / payment limits
	MinDeposit         int64
	MinWithdrawal      int64
	WithdrawalsPerDay  int
	PurchaseDedupTTL   time.Duration
	PurchaseRateLimit  int
	PurchaseRateWindow time.Duration
}

// Load reads configuration from the environment. Required variables are
// fatal when missing; everything else has a production-safe default.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	provider := os.Getenv("PIX_PROVIDER")
	if provider == "" {
		provider = "betpaym"
	}

	cfg := &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		PixProvider:      provider,
		PixAPIKey:        os.Getenv("PIX_API_KEY"),
		PixAPISecret:     os.Getenv("PIX_API_SECRET"),
		PixBaseURL:       os.Getenv("PIX_BASE_URL"),
		PixWebhookSecret: os.Getenv("PIX_WEBHOOK_SECRET"),
		PixCallbackURL:   os.Getenv("PIX_CALLBACK_URL"),
		ChargeExpiresIn:  envDuration("PIX_CHARGE_EXPIRES_SECONDS", 15*time.Minute),
		SettlePollEvery:  envDuration("SETTLE_POLL_SECONDS", time.Minute),

		MinDeposit:         envInt64("MIN_DEPOSIT", 5),
		MinWithdrawal:      envInt64("MIN_WITHDRAWAL", 20),
		WithdrawalsPerDay:  envInt("WITHDRAWALS_PER_DAY", 3),
		PurchaseDedupTTL:   envDuration("PURCHASE_DEDUP_SECONDS", 3*time.Second),
		PurchaseRateLimit:  envInt("PURCHASE_RATE_LIMIT", 60),
		PurchaseRateWindow: envDuration("PURCHASE_RATE_WINDOW_SECONDS", time.Minute),
	}

	return cfg
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

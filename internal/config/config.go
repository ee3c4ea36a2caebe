package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the application.
type Config struct {
	Env             string
	HTTPPort        string
	DatabaseURL     string
	MigrationsPath  string
	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AllowedOrigins  []string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	LedgerBaseURL         string
	LedgerTimeout         time.Duration
	PlatformLedgerAddress string

	// TokenExchangeRate is VND per one platform token. There is no live
	// price feed; the rate changes only with a restart.
	TokenExchangeRate float64

	SignOtpTTL time.Duration
}

// Load reads environment variables and returns a ready configuration.
func Load() (*Config, error) {
	// Load .env only if present, otherwise rely on the environment.
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("config: .env not found, using environment variables: %v", err)
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:            env,
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseURL:    getDatabaseURL(),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@carelink.vn"),

		LedgerBaseURL:         getEnv("LEDGER_BASE_URL", "http://localhost:8545"),
		PlatformLedgerAddress: getEnv("PLATFORM_LEDGER_ADDRESS", ""),
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	refreshSecret := getEnv("REFRESH_SECRET", "")

	if env == "production" {
		if len(jwtSecret) < 32 {
			return nil, fmt.Errorf("config: JWT_SECRET is required and must be at least 32 characters in production")
		}
		if len(refreshSecret) < 32 {
			return nil, fmt.Errorf("config: REFRESH_SECRET is required and must be at least 32 characters in production")
		}
	} else {
		if jwtSecret == "" {
			jwtSecret = "super-secret-development-only-change-in-production"
			log.Printf("config: WARNING - default JWT_SECRET in use, change it in production!")
		}
		if refreshSecret == "" {
			refreshSecret = "super-refresh-secret-development-only-change-in-production"
			log.Printf("config: WARNING - default REFRESH_SECRET in use, change it in production!")
		}
	}
	cfg.JWTSecret = jwtSecret
	cfg.RefreshSecret = refreshSecret

	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		if env == "production" {
			return nil, fmt.Errorf("config: CORS_ALLOWED_ORIGINS is required in production")
		}
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	} else {
		cfg.AllowedOrigins = strings.Split(originsStr, ",")
		for i, origin := range cfg.AllowedOrigins {
			cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
		}
	}

	cfg.AccessTokenTTL = mustParseDuration(getEnv("ACCESS_TOKEN_TTL", "15m"))
	cfg.RefreshTokenTTL = mustParseDuration(getEnv("REFRESH_TOKEN_TTL", "720h"))
	cfg.RateLimitLimit = mustParseInt64(getEnv("RATE_LIMIT_LIMIT", "10"))
	cfg.RateLimitPeriod = mustParseDuration(getEnv("RATE_LIMIT_PERIOD", "1m"))

	cfg.RedisDB = int(mustParseInt64(getEnv("REDIS_DB", "0")))
	cfg.SMTPPort = int(mustParseInt64(getEnv("SMTP_PORT", "587")))
	cfg.LedgerTimeout = mustParseDuration(getEnv("LEDGER_TIMEOUT", "30s"))
	cfg.SignOtpTTL = mustParseDuration(getEnv("SIGN_OTP_TTL", "1h"))

	rate, err := strconv.ParseFloat(getEnv("TOKEN_VND_EXCHANGE_RATE", "1"), 64)
	if err != nil || rate <= 0 {
		log.Printf("config: TOKEN_VND_EXCHANGE_RATE invalid, defaulting to 1")
		rate = 1
	}
	cfg.TokenExchangeRate = rate

	return cfg, nil
}

// getDatabaseURL returns DATABASE_URL directly or assembles it from parts.
func getDatabaseURL() string {
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	name := getEnv("DB_NAME", "carelink")
	sslMode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslMode)
}

// getEnv returns the environment value or a fallback.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func mustParseDuration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: cannot parse duration %q, using 1m: %v", raw, err)
		return time.Minute
	}
	return d
}

func mustParseInt64(raw string) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("config: cannot parse integer %q, using 0: %v", raw, err)
		return 0
	}
	return v
}

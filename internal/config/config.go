package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string // "development" | "production"

	MongoURI string
	MongoDB  string

	JWTSecret      string
	AccessTTL      time.Duration // bearer token lifetime
	CookieTTL      time.Duration // cookie lifetime set by the HTTP layer, decoupled from AccessTTL
	BcryptCost     int
	OAuthStateKey  string
	GoogleClientID string
	GoogleSecret   string
	GoogleRedirect string
	FrontendURL    string

	RateLimitMax    int // requests per window, per IP
	RateLimitWindow time.Duration

	RabbitURL      string
	RabbitExchange string
}

func Load() Config {
	// production environments may not have a .env file
	_ = godotenv.Load()

	return Config{
		Port:        getenv("APP_PORT", "8080"),
		Environment: getenv("ENVIRONMENT", "development"),

		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "tasks_db"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTTL:      time.Duration(atoi(getenv("ACCESS_TTL_HOURS", "24"))) * time.Hour,
		CookieTTL:      time.Duration(atoi(getenv("COOKIE_TTL_DAYS", "7"))) * 24 * time.Hour,
		BcryptCost:     atoi(getenv("BCRYPT_COST", "10")),
		OAuthStateKey:  getenv("OAUTH_STATE_SECRET", os.Getenv("JWT_SECRET")),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirect: os.Getenv("GOOGLE_REDIRECT_URI"),
		FrontendURL:    os.Getenv("FRONTEND_URL"),

		RateLimitMax:    atoi(getenv("RATE_LIMIT_MAX", "100")),
		RateLimitWindow: time.Duration(atoi(getenv("RATE_LIMIT_WINDOW_MIN", "10"))) * time.Minute,

		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getenv("RABBIT_EXCHANGE", "auth.events"),
	}
}

// Validate fails fast at startup so per-request code never discovers a
// missing secret. Google OAuth is optional but must be configured fully or
// not at all.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("ACCESS_TTL_HOURS must be a positive integer")
	}
	if c.CookieTTL <= 0 {
		return fmt.Errorf("COOKIE_TTL_DAYS must be a positive integer")
	}
	if c.GoogleConfigured() {
		if c.FrontendURL == "" {
			return fmt.Errorf("FRONTEND_URL is required when Google OAuth is enabled")
		}
	} else if c.GoogleClientID != "" || c.GoogleSecret != "" || c.GoogleRedirect != "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URI must be set together")
	}
	return nil
}

func (c Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleSecret != "" && c.GoogleRedirect != ""
}

func (c Config) Production() bool { return c.Environment == "production" }

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

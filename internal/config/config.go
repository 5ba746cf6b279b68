package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting. Values come from the environment
// (optionally seeded from a .env file by the caller).
type Config struct {
	Port     string
	Env      string
	LogLevel string

	StoreDriver string
	DBFile      string
	SQLitePath  string
	DatabaseURL string

	JWTSecret    []byte
	SessionKey   []byte
	TokenTTL     time.Duration
	SessionTTL   time.Duration
	AuthMode     string
	CookieSecure bool
	CookieDomain string

	UploadDir      string
	MaxUploadBytes int64
	S3Bucket       string
	AWSRegion      string
	AssetsBaseURL  string

	SESFromEmail  string
	NotifyEmailTo []string
	NotifySMSTo   []string

	WhatsAppPhone string
	CORSOrigins   []string
	SubmitWindow  time.Duration
	SecretsARN    string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads the configuration. In production JWT_SECRET and SESSION_KEY are
// mandatory; elsewhere missing keys are replaced by random ones with a warning.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "3000"),
		Env:      strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver: getEnv("STORE_DRIVER", "file"),
		DBFile:      getEnv("DB_FILE", "db.json"),
		SQLitePath:  getEnv("SQLITE_PATH", "varshini.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AuthMode:     strings.ToLower(getEnv("AUTH_MODE", "hybrid")),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		AWSRegion:     firstNonEmpty(os.Getenv("AWS_REGION"), os.Getenv("AWS_DEFAULT_REGION"), "ap-south-1"),
		AssetsBaseURL: os.Getenv("ASSETS_CDN_BASE_URL"),

		SESFromEmail:  os.Getenv("SES_FROM_EMAIL"),
		NotifyEmailTo: splitList(os.Getenv("NOTIFY_EMAIL_TO")),
		NotifySMSTo:   splitList(os.Getenv("NOTIFY_SMS_TO")),

		WhatsAppPhone: getEnv("WHATSAPP_PHONE", "919876543210"),
		CORSOrigins:   splitList(os.Getenv("CORS_ORIGINS")),
		SecretsARN:    os.Getenv("SECRETS_ARN"),
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("JWT_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SubmitWindow, err = durationEnv("SUBMIT_WINDOW", 30*time.Second); err != nil {
		return nil, err
	}
	maxMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "10"))
	if err != nil || maxMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %q", os.Getenv("MAX_UPLOAD_MB"))
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", cfg.Port)
		cfg.Port = "3000"
	}

	switch cfg.AuthMode {
	case "hybrid", "token", "session":
	default:
		return nil, fmt.Errorf("invalid AUTH_MODE %q (want hybrid, token or session)", cfg.AuthMode)
	}

	cfg.JWTSecret = []byte(os.Getenv("JWT_SECRET"))
	cfg.SessionKey = []byte(os.Getenv("SESSION_KEY"))
	return cfg, nil
}

// Finalize enforces the secret rules once every source (env, Secrets Manager)
// has been applied.
func (c *Config) Finalize() error {
	var missing []string
	if len(c.JWTSecret) == 0 {
		missing = append(missing, "JWT_SECRET")
	}
	if len(c.SessionKey) == 0 {
		missing = append(missing, "SESSION_KEY")
	}
	if len(missing) == 0 {
		return nil
	}
	if c.IsProduction() {
		return fmt.Errorf("missing required secrets in production: %s", strings.Join(missing, ", "))
	}
	for _, key := range missing {
		slog.Warn(key + " not set. Generating a random key for development; sessions and tokens will not survive a restart.")
	}
	if len(c.JWTSecret) == 0 {
		c.JWTSecret = generateRandomBytes(32)
	}
	if len(c.SessionKey) == 0 {
		c.SessionKey = generateRandomBytes(32)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(errors.New("crypto/rand unavailable: " + err.Error()))
	}
	return b
}

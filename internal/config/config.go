package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Create rules for items inside a collection.
const (
	CreateRuleView   = "view"
	CreateRuleCreate = "create"
)

type Config struct {
	Environment             string
	LogLevel                slog.Level
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	JWTSecret               string
	JWTAccessTTL            time.Duration
	JWTRenewTTL             time.Duration
	JWTRefreshTTL           time.Duration
	Session                 SessionConfig
	AuthzCreateRule         string
	CORSOrigins             []string
	RateLimitRPM            int
	AuthRateLimitRPM        int
	AuditBufferSize         int
	BootstrapAdminEmail     string
	BootstrapAdminPassword  string
}

// SessionConfig holds the inactivity thresholds driving the session monitor.
type SessionConfig struct {
	WarningTime           time.Duration
	TokenRefreshThreshold time.Duration
	MaxInactivityTime     time.Duration
	GracePeriod           time.Duration
}

func DefaultSession() SessionConfig {
	return SessionConfig{
		WarningTime:           20 * time.Minute,
		TokenRefreshThreshold: 10 * time.Minute,
		MaxInactivityTime:     60 * time.Minute,
		GracePeriod:           5 * time.Minute,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	defaults := DefaultSession()
	cfg := &Config{
		Environment:             strings.ToLower(getEnv("APP_ENV", EnvProduction)),
		LogLevel:                getLevel("LOG_LEVEL", slog.LevelInfo),
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 1)),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTAccessTTL:            getDuration("JWT_ACCESS_TTL", 12*time.Hour),
		JWTRenewTTL:             getDuration("JWT_RENEW_TTL", time.Hour),
		JWTRefreshTTL:           getDuration("JWT_REFRESH_TTL", 168*time.Hour),
		Session: SessionConfig{
			WarningTime:           getDuration("SESSION_WARNING_TIME", defaults.WarningTime),
			TokenRefreshThreshold: getDuration("SESSION_REFRESH_THRESHOLD", defaults.TokenRefreshThreshold),
			MaxInactivityTime:     getDuration("SESSION_MAX_INACTIVITY", defaults.MaxInactivityTime),
			GracePeriod:           getDuration("SESSION_GRACE_PERIOD", defaults.GracePeriod),
		},
		AuthzCreateRule:        strings.ToLower(getEnv("AUTHZ_CREATE_RULE", CreateRuleView)),
		CORSOrigins:            splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:           getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:       getInt("AUTH_RATE_LIMIT_RPM", 20),
		AuditBufferSize:        getInt("AUDIT_BUFFER_SIZE", 256),
		BootstrapAdminEmail:    strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),
		BootstrapAdminPassword: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MAX_CONNS must be positive and not below DB_MIN_CONNS")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.JWTAccessTTL <= 0 || c.JWTRenewTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL, JWT_RENEW_TTL and JWT_REFRESH_TTL must be positive")
	}

	if err := c.Session.Validate(); err != nil {
		return err
	}

	if c.AuthzCreateRule != CreateRuleView && c.AuthzCreateRule != CreateRuleCreate {
		return fmt.Errorf("AUTHZ_CREATE_RULE must be %q or %q", CreateRuleView, CreateRuleCreate)
	}

	if c.AuditBufferSize <= 0 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive")
	}

	if (c.BootstrapAdminEmail == "") != (c.BootstrapAdminPassword == "") {
		return fmt.Errorf("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}

	return nil
}

func (s SessionConfig) Validate() error {
	if s.WarningTime <= 0 || s.TokenRefreshThreshold <= 0 || s.MaxInactivityTime <= 0 || s.GracePeriod < 0 {
		return fmt.Errorf("session thresholds must be positive")
	}

	if s.TokenRefreshThreshold >= s.WarningTime {
		return fmt.Errorf("SESSION_REFRESH_THRESHOLD must be below SESSION_WARNING_TIME")
	}

	if s.WarningTime >= s.MaxInactivityTime {
		return fmt.Errorf("SESSION_WARNING_TIME must be below SESSION_MAX_INACTIVITY")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getLevel(key string, fallback slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}

	return level
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}

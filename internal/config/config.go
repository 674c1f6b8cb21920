package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTTTL matches the 8,640,000 ms lifetime the API has always issued.
const DefaultJWTTTL = 8640000 * time.Millisecond

const minSecretLength = 32

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	JWTSecret      string
	JWTTTL         time.Duration
	RedisURL       string
	VerifyCacheTTL time.Duration

	UserSource        string
	UsersFile         string
	AdminPassword     string
	UserPassword      string
	FormLoginEnabled  bool
	StatelessSessions bool
	SessionKey        string
	CookieSecure      bool

	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	SeedSampleData bool

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int

	ExternalAPIURL     string
	ExternalAPITimeout time.Duration

	LogFormat string
	LogLevel  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:                  getDuration("JWT_TTL", DefaultJWTTTL),
		RedisURL:                strings.TrimSpace(os.Getenv("REDIS_URL")),
		VerifyCacheTTL:          getDuration("VERIFY_CACHE_TTL", 30*time.Second),
		UserSource:              strings.ToLower(getEnv("USER_SOURCE", "memory")),
		UsersFile:               getEnv("USERS_FILE", "./users.yaml"),
		AdminPassword:           getEnv("SEED_ADMIN_PASSWORD", "admin"),
		UserPassword:            getEnv("SEED_USER_PASSWORD", "password"),
		FormLoginEnabled:        getBool("FORM_LOGIN_ENABLED", false),
		StatelessSessions:       getBool("STATELESS_SESSIONS", true),
		SessionKey:              strings.TrimSpace(os.Getenv("SESSION_KEY")),
		CookieSecure:            getBool("COOKIE_SECURE", false),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 1)),
		SeedSampleData:          getBool("SEED_SAMPLE_DATA", false),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
		ExternalAPIURL:          strings.TrimSpace(os.Getenv("EXTERNAL_API_URL")),
		ExternalAPITimeout:      getDuration("EXTERNAL_API_TIMEOUT", 5*time.Second),
		LogFormat:               strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
		LogLevel:                strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}

	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.JWTTTL%time.Second != 0 {
		return fmt.Errorf("JWT_TTL must be a whole number of seconds")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	switch c.UserSource {
	case "memory", "file":
	case "database":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when USER_SOURCE=database")
		}
	default:
		return fmt.Errorf("USER_SOURCE must be one of memory, database, file")
	}

	if c.UserSource == "file" && strings.TrimSpace(c.UsersFile) == "" {
		return fmt.Errorf("USERS_FILE cannot be empty when USER_SOURCE=file")
	}

	if c.FormLoginEnabled && c.StatelessSessions {
		return fmt.Errorf("FORM_LOGIN_ENABLED requires STATELESS_SESSIONS=false")
	}

	if !c.StatelessSessions && len(c.SessionKey) < minSecretLength {
		return fmt.Errorf("SESSION_KEY must be at least %d bytes when sessions are enabled", minSecretLength)
	}

	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS are out of range")
	}

	if c.ExternalAPITimeout <= 0 {
		return fmt.Errorf("EXTERNAL_API_TIMEOUT must be positive")
	}

	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be pretty or json")
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

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

// getDuration accepts Go duration strings ("2h24m") or bare milliseconds ("8640000").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
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

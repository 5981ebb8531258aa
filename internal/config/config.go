package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string // ENV: production, development, etc.
	Host        string // Raw HOST env (e.g. https://api.example.com)
	AllowedHost string // Hostname only for strict host check (production only)

	StoreDriver   string // mongo or memory
	MongoURI      string
	MongoDatabase string
	PostgresURI   string // optional: auth audit trail
	RedisURI      string // optional: per-IP rate limiting

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	TokenIssuer        string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	MaxUploadBytes      int64

	AllowedOrigins []string
	CookieSecure   bool

	RevokeSessionsOnPasswordChange bool

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8000")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = bareHost(host)
	}

	allowedOrigins := parseOrigins(getEnv("CORS_ORIGIN", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: env,
		Host:        host,
		AllowedHost: allowedHost,

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoURI:      getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		MongoDatabase: getEnv("MONGODB_DATABASE", "videotube"),
		PostgresURI:   getEnv("POSTGRES_URI", ""),
		RedisURI:      getEnv("REDIS_URI", ""),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
		AccessTokenExpiry:  getDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
		RefreshTokenExpiry: getDuration("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),
		TokenIssuer:        getEnv("TOKEN_ISSUER", "videotube-backend"),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "videotube"),
		MaxUploadBytes:      getInt64("MAX_UPLOAD_BYTES", 10<<20),

		AllowedOrigins: allowedOrigins,
		CookieSecure:   getBool("COOKIE_SECURE", true),

		RevokeSessionsOnPasswordChange: getBool("REVOKE_SESSIONS_ON_PASSWORD_CHANGE", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate reports configuration that would make token issuance unsafe or impossible.
func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		return errors.New("token expiries must be positive")
	}
	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		return errors.New("STORE_DRIVER must be mongo or memory")
	}
	if c.IsProduction() && c.StoreDriver == "memory" {
		return errors.New("memory store is not allowed in production")
	}
	return nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// CloudinaryConfigured reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func bareHost(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !containsOrigin(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

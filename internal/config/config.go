package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret string
	TokenTTL   time.Duration

	EnableLocalAuth bool
	RoleFromDB      bool

	AdminUser     string
	AdminEmail    string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	LogLevel       string
	RequestTimeout time.Duration
}

// Load reads an optional .env file (ENV_FILE overrides the path) and then
// the process environment. Variables already set are not overwritten.
func Load() Config {
	path := envOr("ENV_FILE", ".env")
	_ = godotenv.Load(path) // missing file is fine
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(envOr("MODE", string(ModeOffline)))
	defOrigins := "http://localhost:3000,http://localhost:3010"
	if mode == ModeOnline {
		defOrigins = "https://learn.mindengage.ai"
	}
	return Config{
		Mode:            mode,
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		AuthSecret:      envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTL:        envDuration("TOKEN_TTL", 8*time.Hour),
		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", true),
		RoleFromDB:      envBool("ROLE_FROM_DB", mode == ModeOnline),
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminEmail:      envOr("ADMIN_EMAIL", ""),
		AdminPassHash:   envOr("ADMIN_PASS_HASH", ""),
		CORSOrigins:     csvOr("CORS_ORIGINS", defOrigins),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	LogLevel        string

	DatabaseURL string
	// Zero DB pool values defer to the runtime defaults in storage/db.
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  time.Duration
	DBConnIdleTime  time.Duration
	DBPingTimeout   time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogStore    string
	CatalogDir      string
	CatalogKey      string
	CatalogCacheTTL time.Duration
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider   string
	LLMModel      string
	LLMTimeout    time.Duration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string

	JWTSecret          string
	JWTTTL             time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	SubmitRatePerMinute int
}

var defaults = map[string]any{
	"ENV":                       "dev",
	"PORT":                      "8080",
	"CORS_ALLOW_ORIGINS":        "http://localhost:3000",
	"LOG_LEVEL":                 "info",
	"DATABASE_URL":              "",
	"DB_MAX_OPEN_CONNS":         0,
	"DB_MAX_IDLE_CONNS":         0,
	"DB_CONN_MAX_LIFETIME":      "",
	"DB_CONN_MAX_IDLE_TIME":     "",
	"DB_PING_TIMEOUT":           "",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"CATALOG_STORE":             "local",
	"CATALOG_DIR":               "./data",
	"CATALOG_KEY":               "assessment_questions.json",
	"CATALOG_CACHE_TTL":         "10m",
	"AWS_REGION":                "",
	"S3_BUCKET":                 "",
	"S3_PREFIX":                 "",
	"SSE_KMS_KEY_ID":            "",
	"LLM_PROVIDER":              "openai",
	"LLM_MODEL":                 "gpt-4o-mini",
	"LLM_TIMEOUT":               "60s",
	"OPENAI_API_KEY":            "",
	"OPENAI_BASE_URL":           "https://api.openai.com/v1",
	"GEMINI_API_KEY":            "",
	"JWT_SECRET":                "",
	"JWT_TTL":                   "24h",
	"GOOGLE_CLIENT_ID":          "",
	"GOOGLE_CLIENT_SECRET":      "",
	"GOOGLE_REDIRECT_URL":       "",
	"UI_REDIRECT_URL":           "",
	"RATE_LIMIT_SUBMIT_PER_MIN": 6,
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	cfg := fromViper(v)
	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	if cfg.Env == "production" && cfg.JWTSecret == "" {
		log.Printf("JWT_SECRET is required in production")
	}
	return cfg
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Port:                v.GetString("PORT"),
		Env:                 normalizeEnv(v.GetString("ENV")),
		CORSAllowOrigin:     splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		LogLevel:            strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		DatabaseURL:         strings.TrimSpace(v.GetString("DATABASE_URL")),
		DBMaxOpenConns:      v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:      v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnLifetime:      v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBConnIdleTime:      v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		DBPingTimeout:       v.GetDuration("DB_PING_TIMEOUT"),
		RedisAddr:           strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		RedisDB:             v.GetInt("REDIS_DB"),
		CatalogStore:        normalizeStoreType(v.GetString("CATALOG_STORE")),
		CatalogDir:          v.GetString("CATALOG_DIR"),
		CatalogKey:          strings.TrimSpace(v.GetString("CATALOG_KEY")),
		CatalogCacheTTL:     v.GetDuration("CATALOG_CACHE_TTL"),
		AWSRegion:           v.GetString("AWS_REGION"),
		S3Bucket:            v.GetString("S3_BUCKET"),
		S3Prefix:            v.GetString("S3_PREFIX"),
		SSEKMSKeyID:         v.GetString("SSE_KMS_KEY_ID"),
		LLMProvider:         normalizeProvider(v.GetString("LLM_PROVIDER")),
		LLMModel:            strings.TrimSpace(v.GetString("LLM_MODEL")),
		LLMTimeout:          v.GetDuration("LLM_TIMEOUT"),
		OpenAIAPIKey:        strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIBaseURL:       strings.TrimRight(strings.TrimSpace(v.GetString("OPENAI_BASE_URL")), "/"),
		GeminiAPIKey:        strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		JWTSecret:           strings.TrimSpace(v.GetString("JWT_SECRET")),
		JWTTTL:              v.GetDuration("JWT_TTL"),
		GoogleClientID:      v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:   v.GetString("GOOGLE_REDIRECT_URL"),
		UIRedirectURL:       v.GetString("UI_REDIRECT_URL"),
		SubmitRatePerMinute: v.GetInt("RATE_LIMIT_SUBMIT_PER_MIN"),
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "none", "placeholder", "off":
		return "none"
	default:
		return "openai"
	}
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

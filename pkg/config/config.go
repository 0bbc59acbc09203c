package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Column layout store backends.
const (
	ColumnStoreMemory   = "memory"
	ColumnStoreRedis    = "redis"
	ColumnStorePostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database        DatabaseConfig
	Redis           RedisConfig
	JWT             JWTConfig
	CORS            CORSConfig
	Log             LogConfig
	RegistrationAPI RegistrationAPIConfig
	Console         ConsoleConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RegistrationAPIConfig points the console at the remote registration backend.
type RegistrationAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ConsoleConfig tunes the per-admin review sessions.
type ConsoleConfig struct {
	ColumnStore     string
	ColumnTableKey  string
	DefaultLanguage string
	BulkConcurrency int
	SessionIdleTTL  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.RegistrationAPI = RegistrationAPIConfig{
		BaseURL: strings.TrimRight(v.GetString("REGISTRATION_API_BASE_URL"), "/"),
		APIKey:  v.GetString("REGISTRATION_API_KEY"),
		Timeout: parseDuration(v.GetString("REGISTRATION_API_TIMEOUT"), 10*time.Second),
	}

	concurrency := v.GetInt("BULK_CONCURRENCY")
	if concurrency <= 0 {
		concurrency = 8
	}
	cfg.Console = ConsoleConfig{
		ColumnStore:     normalizeStore(v.GetString("COLUMN_STORE")),
		ColumnTableKey:  v.GetString("COLUMN_TABLE_KEY"),
		DefaultLanguage: strings.ToLower(strings.TrimSpace(v.GetString("DEFAULT_LANGUAGE"))),
		BulkConcurrency: concurrency,
		SessionIdleTTL:  parseDuration(v.GetString("SESSION_IDLE_TTL"), 2*time.Hour),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "registration_console")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REGISTRATION_API_BASE_URL", "http://localhost:8000")
	v.SetDefault("REGISTRATION_API_KEY", "")
	v.SetDefault("REGISTRATION_API_TIMEOUT", "10s")

	v.SetDefault("BULK_CONCURRENCY", 8)
	v.SetDefault("COLUMN_STORE", ColumnStoreMemory)
	v.SetDefault("COLUMN_TABLE_KEY", "registration-requests")
	v.SetDefault("DEFAULT_LANGUAGE", "fr")
	v.SetDefault("SESSION_IDLE_TTL", "2h")
}

func normalizeStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ColumnStoreRedis:
		return ColumnStoreRedis
	case ColumnStorePostgres, "postgresql", "pg":
		return ColumnStorePostgres
	default:
		return ColumnStoreMemory
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	BackendFS       = "fs"
	BackendS3       = "s3"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Environment    string        `mapstructure:"ENVIRONMENT"`
	Version        string        `mapstructure:"VERSION"`
	TrustedOrigins []string      `mapstructure:"TRUSTED_ORIGINS"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	RateLimitEnabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitRPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int     `mapstructure:"RATE_LIMIT_BURST"`

	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`

	AllowedEmails []string `mapstructure:"ALLOWED_EMAILS"`
	JWTSecret     string   `mapstructure:"AUTH_JWT_SECRET"`
	JWTIssuer     string   `mapstructure:"AUTH_JWT_ISSUER"`
	JWTAudience   string   `mapstructure:"AUTH_JWT_AUDIENCE"`

	StoreBackend     string        `mapstructure:"STORE_BACKEND"`
	StoreNamespace   string        `mapstructure:"STORE_NAMESPACE"`
	EventualCacheTTL time.Duration `mapstructure:"EVENTUAL_CACHE_TTL"`
	PostsDir         string        `mapstructure:"POSTS_DIR"`

	S3Bucket   string `mapstructure:"S3_BUCKET"`
	S3Region   string `mapstructure:"S3_REGION"`
	S3Endpoint string `mapstructure:"S3_ENDPOINT"`
	S3Prefix   string `mapstructure:"S3_PREFIX"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	DBHost       string `mapstructure:"POSTGRES_HOST"`
	DBPort       string `mapstructure:"POSTGRES_PORT"`
	DBUser       string `mapstructure:"POSTGRES_USER"`
	DBPassword   string `mapstructure:"POSTGRES_PASSWORD"`
	DBName       string `mapstructure:"POSTGRES_DB"`
	DBMigrations string `mapstructure:"POSTGRES_MIGRATIONS"`
}

var defaults = map[string]any{
	"PORT":                "4000",
	"ENVIRONMENT":         "development",
	"VERSION":             "1.0.0",
	"TRUSTED_ORIGINS":     []string{},
	"LOG_LEVEL":           "info",
	"REQUEST_TIMEOUT":     10 * time.Second,
	"RATE_LIMIT_ENABLED":  true,
	"RATE_LIMIT_RPS":      2.0,
	"RATE_LIMIT_BURST":    4,
	"TLS_CERT_FILE":       "",
	"TLS_KEY_FILE":        "",
	"ALLOWED_EMAILS":      []string{},
	"AUTH_JWT_SECRET":     "",
	"AUTH_JWT_ISSUER":     "",
	"AUTH_JWT_AUDIENCE":   "",
	"STORE_BACKEND":       BackendFS,
	"STORE_NAMESPACE":     "posts",
	"EVENTUAL_CACHE_TTL":  30 * time.Second,
	"POSTS_DIR":           "./posts",
	"S3_BUCKET":           "",
	"S3_REGION":           "us-east-1",
	"S3_ENDPOINT":         "",
	"S3_PREFIX":           "posts/",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"POSTGRES_HOST":       "localhost",
	"POSTGRES_PORT":       "5432",
	"POSTGRES_USER":       "",
	"POSTGRES_PASSWORD":   "",
	"POSTGRES_DB":         "",
	"POSTGRES_MIGRATIONS": "file://migrations",
}

// Load reads a dotenv style file. Environment variables take precedence over the file, and a
// missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.TrustedOrigins = compact(cfg.TrustedOrigins)
	cfg.AllowedEmails = compact(cfg.AllowedEmails)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Environment, validation.Required, validation.In("development", "staging", "production")),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RateLimitRPS, validation.When(c.RateLimitEnabled, validation.Required, validation.Min(0.0))),
		validation.Field(&c.RateLimitBurst, validation.When(c.RateLimitEnabled, validation.Required, validation.Min(1))),
		validation.Field(&c.TLSCertFile, validation.When(c.Environment == "production", validation.Required)),
		validation.Field(&c.TLSKeyFile, validation.When(c.Environment == "production", validation.Required)),
		validation.Field(&c.AllowedEmails, validation.Required, validation.Each(is.EmailFormat)),
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.StoreBackend, validation.Required, validation.In(BackendFS, BackendS3, BackendRedis, BackendPostgres)),
		validation.Field(&c.StoreNamespace, validation.Required),
		validation.Field(&c.EventualCacheTTL, validation.Required),
		validation.Field(&c.PostsDir, validation.When(c.StoreBackend == BackendFS, validation.Required)),
		validation.Field(&c.S3Bucket, validation.When(c.StoreBackend == BackendS3, validation.Required)),
		validation.Field(&c.S3Region, validation.When(c.StoreBackend == BackendS3, validation.Required)),
		validation.Field(&c.S3Endpoint, validation.When(c.S3Endpoint != "", is.URL)),
		validation.Field(&c.RedisAddr, validation.When(c.StoreBackend == BackendRedis, validation.Required)),
		validation.Field(&c.DBHost, validation.When(c.StoreBackend == BackendPostgres, validation.Required)),
		validation.Field(&c.DBUser, validation.When(c.StoreBackend == BackendPostgres, validation.Required)),
		validation.Field(&c.DBName, validation.When(c.StoreBackend == BackendPostgres, validation.Required)),
		validation.Field(&c.DBMigrations, validation.When(c.StoreBackend == BackendPostgres, validation.Required)),
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingSupabaseURL     = errors.New("SUPABASE_URL is required")
	ErrMissingSupabaseAnonKey = errors.New("SUPABASE_ANON_KEY is required")
)

type Config struct {
	Server    ServerConfig
	Supabase  SupabaseConfig
	Storage   StorageConfig
	Session   SessionConfig
	Email     EmailConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogFile        string
	AllowedOrigins []string
}

type SupabaseConfig struct {
	URL         string
	AnonKey     string
	JWTSecret   string // optional, enables local verification of session tokens
	HTTPTimeout time.Duration
}

type StorageConfig struct {
	Backend   string // "supabase" or "s3"
	Bucket    string
	PublicURL string // base for public object URLs when Backend is "s3"
	S3        S3Config
}

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type SessionConfig struct {
	Secret string
	Secure bool
	MaxAge int // in seconds
}

type EmailConfig struct {
	Provider        string // "emailjs", "smtp" or "log"
	ServiceID       string
	PublicKey       string
	PrivateKey      string
	ContactTemplate string
	QuoteTemplate   string
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPassword    string
	From            string
	To              string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type DatabaseConfig struct {
	URL string // direct Postgres URL of the BaaS project, used by cmd/migrate
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// Load reads configuration from the environment (and a .env file when present).
// SUPABASE_URL and SUPABASE_ANON_KEY are mandatory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("SUPABASE_HTTP_TIMEOUT", "15s")
	v.SetDefault("STORAGE_BACKEND", "supabase")
	v.SetDefault("STORAGE_BUCKET", "pycsa-image")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_MAX_AGE", 8*60*60)
	v.SetDefault("EMAIL_PROVIDER", "log")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 5)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			LogFile:        v.GetString("LOG_FILE"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Supabase: SupabaseConfig{
			URL:         strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			AnonKey:     v.GetString("SUPABASE_ANON_KEY"),
			JWTSecret:   v.GetString("SUPABASE_JWT_SECRET"),
			HTTPTimeout: v.GetDuration("SUPABASE_HTTP_TIMEOUT"),
		},
		Storage: StorageConfig{
			Backend:   v.GetString("STORAGE_BACKEND"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			PublicURL: strings.TrimRight(v.GetString("STORAGE_PUBLIC_URL"), "/"),
			S3: S3Config{
				Endpoint:        v.GetString("S3_ENDPOINT"),
				Region:          v.GetString("S3_REGION"),
				AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			},
		},
		Session: SessionConfig{
			Secret: v.GetString("SESSION_SECRET"),
			Secure: v.GetString("SERVER_ENV") == "production",
			MaxAge: v.GetInt("SESSION_MAX_AGE"),
		},
		Email: EmailConfig{
			Provider:        v.GetString("EMAIL_PROVIDER"),
			ServiceID:       v.GetString("EMAILJS_SERVICE_ID"),
			PublicKey:       v.GetString("EMAILJS_PUBLIC_KEY"),
			PrivateKey:      v.GetString("EMAILJS_PRIVATE_KEY"),
			ContactTemplate: v.GetString("EMAIL_CONTACT_TEMPLATE"),
			QuoteTemplate:   v.GetString("EMAIL_QUOTE_TEMPLATE"),
			SMTPHost:        v.GetString("SMTP_HOST"),
			SMTPPort:        v.GetInt("SMTP_PORT"),
			SMTPUser:        v.GetString("SMTP_USER"),
			SMTPPassword:    v.GetString("SMTP_PASSWORD"),
			From:            v.GetString("EMAIL_FROM"),
			To:              v.GetString("EMAIL_TO"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return ErrMissingSupabaseURL
	}
	if c.Supabase.AnonKey == "" {
		return ErrMissingSupabaseAnonKey
	}
	switch c.Storage.Backend {
	case "supabase":
	case "s3":
		if c.Storage.S3.Endpoint == "" || c.Storage.PublicURL == "" {
			return fmt.Errorf("storage backend s3 requires S3_ENDPOINT and STORAGE_PUBLIC_URL")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

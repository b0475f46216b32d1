package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvProduction is the APP_ENV value that enables strict checks.
	EnvProduction = "production"

	devJWTSecret      = "dev-secret"
	defaultTokenTTL   = 24 * time.Hour
	defaultBcryptCost = 10
)

// ErrMissingJWTSecret is returned when production runs without JWT_SECRET.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Upload   UploadConfig
	S3       S3Config
	Mail     MailConfig
	Contact  ContactConfig
	Kafka    KafkaConfig
	Cache    CacheConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	RequestTimeoutSeconds int
	BodyLimitMB           int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	BcryptCost      int
	SuperAdminEmail string
	// UsingDevSecret is set when the development fallback secret is in use.
	UsingDevSecret bool
}

// UploadConfig controls image upload handling.
type UploadConfig struct {
	Dir      string
	MaxFiles int
}

// S3Config enables object storage for images when Bucket is set.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	// PublicURL replaces BASE_URL in image URLs, e.g. a CDN that maps /uploads/ onto the bucket.
	PublicURL string
}

// MailConfig holds SMTP settings for the contact relay.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// ContactConfig is the public contact block.
type ContactConfig struct {
	Phone   string
	Email   string
	Address string
}

// KafkaConfig enables publishing catalog events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CacheConfig controls the catalog lookup cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	tokenTTL, err := ParseExpiry(getEnv("JWT_EXPIRES_IN", "1d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	port := getEnv("PORT", getEnv("APP_PORT", "7000"))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "trt-parts-backend"),
			Env:                   getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
			Host:                  getEnv("HOST", "0.0.0.0"),
			Port:                  port,
			Version:               getEnv("APP_VERSION", "dev"),
			BaseURL:               strings.TrimRight(getEnv("BASE_URL", "http://localhost:"+port), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitMB:           getEnvAsInt("HTTP_BODY_LIMIT_MB", 50),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			TokenTTL:        tokenTTL,
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", defaultBcryptCost),
			SuperAdminEmail: getEnv("SUPERADMIN_EMAIL", "superadmin@trt-parts.com"),
		},
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxFiles: getEnvAsInt("UPLOAD_MAX_FILES", 20),
		},
		S3: S3Config{
			Bucket:       os.Getenv("S3_BUCKET"),
			Region:       getEnv("S3_REGION", "us-east-1"),
			Endpoint:     os.Getenv("S3_ENDPOINT"),
			AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("S3_SECRET_KEY"),
			UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", true),
			PublicURL:    strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		},
		Mail: MailConfig{
			Host:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("EMAIL_PORT", 587),
			Username: os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
			From:     os.Getenv("EMAIL_FROM"),
			To:       os.Getenv("EMAIL_TO"),
		},
		Contact: ContactConfig{
			Phone:   getEnv("CONTACT_PHONE", "+998901234567"),
			Email:   getEnv("CONTACT_EMAIL", "contact@trt-parts.com"),
			Address: getEnv("CONTACT_ADDRESS", "Toshkent, Chilanzar, 45-uy"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "catalog_events"),
		},
		Cache: CacheConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", true),
			TTL:     cacheTTL,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces rules that must hold before the service starts.
// Outside production a missing JWT secret falls back to a development value.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if c.App.IsProduction() {
			return ErrMissingJWTSecret
		}
		c.Auth.JWTSecret = devJWTSecret
		c.Auth.UsingDevSecret = true
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = defaultTokenTTL
	}
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = defaultBcryptCost
	}
	if c.Upload.MaxFiles <= 0 {
		c.Upload.MaxFiles = 20
	}
	return nil
}

// IsProduction reports whether strict production checks apply.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, EnvProduction)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ParseExpiry accepts Go durations ("12h", "90m"), a day suffix ("1d", "7d")
// or a bare number of seconds.
func ParseExpiry(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultTokenTTL, nil
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("bad day count %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("non-positive expiry %q", raw)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive expiry %q", raw)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

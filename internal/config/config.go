package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers understood by the repository wiring.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
	StorageDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the service. It is built once at
// startup and passed by value or pointer; nothing reads the environment later.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Mail     MailConfig
	HTTP     HTTPConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StorageConfig selects the credential/task/ticket store backend.
type StorageConfig struct {
	Driver string
}

// PostgresConfig holds DB connection values. StatementTimeoutMs bounds every
// query when positive.
type PostgresConfig struct {
	DSN                string
	MaxConns           int32
	MinConns           int32
	RunMigrations      bool
	MigrationsDir      string
	ConnMaxIdleSec     int32
	ConnMaxLifeSec     int32
	ApplicationName    string
	StatementTimeoutMs int
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
	Env     string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret                  string
	SessionTTLMinutes          int
	VerificationTTLMinutes     int
	PasswordResetTTLMinutes    int
	BcryptCost                 int
	AllowPrivilegedSignupRoles bool
}

// MailConfig holds SMTP and mail queue settings.
type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
	QueueKey    string
}

// HTTPConfig holds transport hardening knobs.
type HTTPConfig struct {
	CORSOrigins        string
	AuthRateLimit      int
	AuthRateWindowSecs int
}

// Load reads configuration from .env, an optional CONFIG_FILE and environment
// variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  v.GetString("APP_NAME"),
			Env:                   v.GetString("APP_ENV"),
			Host:                  v.GetString("APP_HOST"),
			Port:                  v.GetString("APP_PORT"),
			Version:               v.GetString("APP_VERSION"),
			RequestTimeoutSeconds: v.GetInt("HTTP_REQUEST_TIMEOUT_SECONDS"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		Postgres: PostgresConfig{
			DSN:                v.GetString("POSTGRES_DSN"),
			MaxConns:           v.GetInt32("POSTGRES_MAX_CONNS"),
			MinConns:           v.GetInt32("POSTGRES_MIN_CONNS"),
			RunMigrations:      v.GetBool("POSTGRES_RUN_MIGRATIONS"),
			MigrationsDir:      v.GetString("POSTGRES_MIGRATIONS_DIR"),
			ConnMaxIdleSec:     v.GetInt32("POSTGRES_CONN_MAX_IDLE_SECONDS"),
			ConnMaxLifeSec:     v.GetInt32("POSTGRES_CONN_MAX_LIFE_SECONDS"),
			ApplicationName:    v.GetString("APP_NAME"),
			StatementTimeoutMs: v.GetInt("POSTGRES_STATEMENT_TIMEOUT_MS"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Logger: LoggerConfig{
			Level:   v.GetString("LOG_LEVEL"),
			Format:  strings.ToLower(v.GetString("LOG_FORMAT")),
			Service: v.GetString("APP_NAME"),
			Env:     v.GetString("APP_ENV"),
		},
		Auth: AuthConfig{
			JWTSecret:                  v.GetString("AUTH_JWT_SECRET"),
			SessionTTLMinutes:          v.GetInt("AUTH_SESSION_TTL_MINUTES"),
			VerificationTTLMinutes:     v.GetInt("AUTH_VERIFICATION_TTL_MINUTES"),
			PasswordResetTTLMinutes:    v.GetInt("AUTH_PASSWORD_RESET_TTL_MINUTES"),
			BcryptCost:                 v.GetInt("AUTH_BCRYPT_COST"),
			AllowPrivilegedSignupRoles: v.GetBool("AUTH_ALLOW_PRIVILEGED_SIGNUP"),
		},
		Mail: MailConfig{
			Host:        v.GetString("MAIL_HOST"),
			Port:        v.GetInt("MAIL_PORT"),
			Username:    v.GetString("MAIL_USERNAME"),
			Password:    v.GetString("MAIL_PASSWORD"),
			From:        v.GetString("MAIL_FROM"),
			FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
			QueueKey:    v.GetString("MAIL_QUEUE_KEY"),
		},
		HTTP: HTTPConfig{
			CORSOrigins:        v.GetString("HTTP_CORS_ORIGINS"),
			AuthRateLimit:      v.GetInt("HTTP_AUTH_RATE_LIMIT"),
			AuthRateWindowSecs: v.GetInt("HTTP_AUTH_RATE_WINDOW_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "workforce-service")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("HTTP_REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("POSTGRES_MAX_CONNS", 10)
	v.SetDefault("POSTGRES_MIN_CONNS", 2)
	v.SetDefault("POSTGRES_RUN_MIGRATIONS", true)
	v.SetDefault("POSTGRES_MIGRATIONS_DIR", "migrations")
	v.SetDefault("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)
	v.SetDefault("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)
	v.SetDefault("POSTGRES_STATEMENT_TIMEOUT_MS", 15000)
	v.SetDefault("MONGO_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("MONGO_DATABASE", "workforce")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("AUTH_JWT_SECRET", "dev-secret")
	v.SetDefault("AUTH_SESSION_TTL_MINUTES", 24*60)
	v.SetDefault("AUTH_VERIFICATION_TTL_MINUTES", 60)
	v.SetDefault("AUTH_PASSWORD_RESET_TTL_MINUTES", 30)
	v.SetDefault("AUTH_BCRYPT_COST", 10)
	v.SetDefault("AUTH_ALLOW_PRIVILEGED_SIGNUP", false)
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_FROM", "noreply@example.com")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("MAIL_QUEUE_KEY", "workforce:mail")
	v.SetDefault("HTTP_CORS_ORIGINS", "*")
	v.SetDefault("HTTP_AUTH_RATE_LIMIT", 20)
	v.SetDefault("HTTP_AUTH_RATE_WINDOW_SECONDS", 60)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMongo, StorageDriverMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET must not be empty")
	}
	if c.App.Env == "production" && c.Auth.JWTSecret == "dev-secret" {
		return fmt.Errorf("AUTH_JWT_SECRET must be set in production")
	}
	return nil
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

// SessionTTL returns the session token validity window.
func (a AuthConfig) SessionTTL() time.Duration {
	return minutesOr(a.SessionTTLMinutes, 24*60)
}

// VerificationTTL returns the email verification token window.
func (a AuthConfig) VerificationTTL() time.Duration {
	return minutesOr(a.VerificationTTLMinutes, 60)
}

// PasswordResetTTL returns the reset token window.
func (a AuthConfig) PasswordResetTTL() time.Duration {
	return minutesOr(a.PasswordResetTTLMinutes, 30)
}

// AuthRateWindow returns the rate limiter window for public auth routes.
func (h HTTPConfig) AuthRateWindow() time.Duration {
	if h.AuthRateWindowSecs <= 0 {
		return time.Minute
	}
	return time.Duration(h.AuthRateWindowSecs) * time.Second
}

func minutesOr(minutes, fallback int) time.Duration {
	if minutes <= 0 {
		minutes = fallback
	}
	return time.Duration(minutes) * time.Minute
}

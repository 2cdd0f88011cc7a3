package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string `env:"APP_ENV" env-default:"local" validate:"oneof=local dev prod"`
	Host     string `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port     string `env:"HTTP_PORT" env-default:"5000" validate:"required,numeric"`
	BaseURL  string `env:"APP_BASE_URL" env-default:"http://localhost:5000" validate:"required,url"`
	GinMode  string `env:"GIN_MODE" env-default:"debug" validate:"oneof=debug release test"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=trace debug info warn error"`

	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	Database DatabaseConfig
	Session  SessionConfig
	Mail     MailConfig
	Admin    AdminConfig
	Notify   NotifyConfig

	// SeedDepartments are created at startup when missing.
	SeedDepartments []string `env:"SEED_DEPARTMENTS" env-separator:","`
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" env-default:"mysql" validate:"oneof=mysql postgres sqlite"`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"3306"`
	User     string `env:"DB_USER" env-default:"taskuser"`
	Password string `env:"DB_PASSWORD" env-default:"taskpassword"`
	Name     string `env:"DB_NAME" env-default:"gestor_tarefas"`
	SSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`
	// Path is only used by the sqlite driver.
	Path string `env:"DB_PATH" env-default:"gestor_tarefas.db"`
}

type SessionConfig struct {
	Store     string `env:"SESSION_STORE" env-default:"cookie" validate:"oneof=cookie redis"`
	Secret    string `env:"SESSION_SECRET" env-default:"default-secret-key-change-me" validate:"required"`
	MaxAge    int    `env:"SESSION_MAX_AGE" env-default:"604800" validate:"gt=0"`
	RedisHost string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort string `env:"REDIS_PORT" env-default:"6379"`
	RedisPool int    `env:"REDIS_POOL_SIZE" env-default:"10"`
}

type MailConfig struct {
	Server   string `env:"MAIL_SERVER" env-default:"smtp.gmail.com"`
	Port     int    `env:"MAIL_PORT" env-default:"587"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	Sender   string `env:"MAIL_DEFAULT_SENDER"`
	UseSSL   bool   `env:"MAIL_USE_SSL" env-default:"false"`
}

// Enabled reports whether enough settings are present to talk to an SMTP server.
func (m MailConfig) Enabled() bool {
	return m.Server != "" && m.Username != ""
}

// From returns the configured sender, falling back to the SMTP username.
func (m MailConfig) From() string {
	if m.Sender != "" {
		return m.Sender
	}
	return m.Username
}

type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type NotifyConfig struct {
	BufferSize  int `env:"NOTIFY_BUFFER_SIZE" env-default:"256" validate:"gt=0"`
	WorkerCount int `env:"NOTIFY_WORKERS" env-default:"2" validate:"gt=0"`
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction reports whether cookies should be marked secure.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release" || c.Env == EnvProd
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

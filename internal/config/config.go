package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// Database
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"mamacare"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/mamacare.db"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`

	// Admin
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Payment gateway (Instasend)
	GatewayAPIURL        string        `env:"GATEWAY_API_URL" envDefault:"https://payment.intasend.com"`
	GatewayAPIKey        string        `env:"GATEWAY_API_KEY"`
	GatewayWebhookSecret string        `env:"GATEWAY_WEBHOOK_SECRET"`
	GatewayCallbackURL   string        `env:"GATEWAY_CALLBACK_URL"`
	GatewayTimeout       time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`
	GatewayMaxRetries    uint64        `env:"GATEWAY_MAX_RETRIES" envDefault:"2"`

	// Billing
	PaymentCurrency string        `env:"PAYMENT_CURRENCY" envDefault:"KES"`
	PremiumPrice    int64         `env:"PREMIUM_PRICE" envDefault:"500"`
	PremiumPeriod   time.Duration `env:"PREMIUM_PERIOD" envDefault:"720h"`

	// SMS
	SMSEnabled bool `env:"SMS_ENABLED" envDefault:"true"`

	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	SentryDSN   string `env:"SENTRY_DSN"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	return cfg, nil
}

// Validate reports missing settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(admin)) == email {
			return true
		}
	}
	return false
}

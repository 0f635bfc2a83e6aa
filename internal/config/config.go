package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"auth_user"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Sessions
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionExpiry time.Duration `env:"SESSION_EXPIRY" envDefault:"168h"`
	CookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"session_token"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`

	// Postal code directory
	PostalLookupURL string        `env:"POSTAL_LOOKUP_URL" envDefault:"https://brasilapi.com.br/api/cep/v2"`
	PostalTimeout   time.Duration `env:"POSTAL_TIMEOUT" envDefault:"5s"`

	// Server
	Port           string        `env:"PORT" envDefault:"8080"`
	CORSOrigins    string        `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// Observability
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`
	SentryDSN        string `env:"SENTRY_DSN"`
	AppEnv           string `env:"APP_ENV" envDefault:"development"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
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

// IsProduction reports whether cookies must be marked Secure regardless of
// SESSION_COOKIE_SECURE.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

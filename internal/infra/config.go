package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database. Empty DATABASE_URL switches the server to file mode: cities
	// and resources come from JSON files and every feature needing the
	// database (contributor updates, permissions) returns STORE_UNAVAILABLE.
	DatabaseURL string `env:"DATABASE_URL"`

	// File mode layout.
	ConfigDir string `env:"CONFIG_DIR" envDefault:"config/cities"`
	DataDir   string `env:"DATA_DIR" envDefault:"data"`

	// Access control
	SuperAdminEmails  string `env:"SUPER_ADMIN_EMAILS"`
	AdminPassword     string `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	// JWT
	JWTSecret        string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTSessionExpiry string `env:"JWT_SESSION_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry   string `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort            int    `env:"API_PORT" envDefault:"3200"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Issue reports
	KafkaBrokers     string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled     bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	ReportTopic      string `env:"REPORT_TOPIC" envDefault:"issue-reports"`
	ReportRateLimit  int    `env:"REPORT_RATE_LIMIT" envDefault:"5"`
	ReportRateWindow string `env:"REPORT_RATE_WINDOW" envDefault:"1h"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// UseDatabase reports whether the deployment is database-backed.
func (c *Config) UseDatabase() bool {
	return c.DatabaseURL != ""
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("neither ADMIN_PASSWORD nor ADMIN_PASSWORD_HASH is set; the super-admin password flow would be unusable")
	}
	return nil
}

// Package config reads the server settings from the environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const productionEnvironment = "production"

type Config struct {
	Environment  string
	Port         string
	BaseURL      string
	LogLevel     string
	CorsOrigins  []string
	ReapInterval time.Duration
	Database     DatabaseConfig
	Mail         MailConfig
	Auth         AuthConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MailConfig struct {
	Domain string
	APIKey string
	From   string
	EU     bool
}

type AuthConfig struct {
	BcryptCost    int
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
}

// IsProduction reports whether mails are dispatched and cookies are marked Secure.
func (c *Config) IsProduction() bool {
	return c.Environment == productionEnvironment
}

// DSN builds the postgres connection string used by pgxpool and golang-migrate.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// LoadConfig loads .env if present and builds the configuration from the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded, using process environment")
	}

	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		Port:         getEnv("PORT", "8080"),
		BaseURL:      strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		CorsOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		ReapInterval: getEnvDuration("REAP_INTERVAL", 0),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASS", ""),
			Name:     getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSL", "disable"),
		},
		Mail: MailConfig{
			Domain: getEnv("MAILGUN_DOMAIN", ""),
			APIKey: getEnv("MAILGUN_API_KEY", ""),
			From:   getEnv("MAIL_FROM", "Next16 <no-reply@next16-demo.dev>"),
			EU:     getEnvBool("MAILGUN_EU", false),
		},
		Auth: AuthConfig{
			BcryptCost:    getEnvInt("BCRYPT_COST", 12),
			SessionTTL:    getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Database.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.IsProduction() && (c.Mail.Domain == "" || c.Mail.APIKey == "") {
		return errors.New("MAILGUN_DOMAIN and MAILGUN_API_KEY are required in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			log.Warnf("Ignoring invalid %s=%q", key, valueStr)
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(valueStr)
		if err != nil {
			log.Warnf("Ignoring invalid %s=%q", key, valueStr)
			return defaultValue
		}
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("1h", "168h").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(valueStr)
		if err != nil {
			log.Warnf("Ignoring invalid %s=%q", key, valueStr)
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

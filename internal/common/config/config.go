package config

import (
	"fmt"
	"time"
)

type (
	// APIServerConfig is the root configuration of the apiserver binary
	APIServerConfig struct {
		Server    ServerConfig    `yaml:"server"`
		Database  DatabaseConfig  `yaml:"database"`
		Auth      AuthConfig      `yaml:"auth"`
		RateLimit RateLimitConfig `yaml:"rate_limit"`
		Logger    LoggerConfig    `yaml:"logger"`
		Metrics   MetricsConfig   `yaml:"metrics"`
		Tracing   TracingConfig   `yaml:"tracing"`
		I18n      I18nConfig      `yaml:"i18n"`
	}

	ServerConfig struct {
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // postgres, mysql, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 5432 (postgres), 3306 (mysql)
		User     string `yaml:"user"`     // connection user
		Password string `yaml:"password"` // connection password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (postgres only)
	}

	// AuthConfig carries the two independent signing secrets, token lifetimes
	// as duration strings (<int><s|m|h|d>) and the password hash work factor.
	AuthConfig struct {
		AccessSecret    string `yaml:"access_secret"`
		RefreshSecret   string `yaml:"refresh_secret"`
		AccessDuration  string `yaml:"access_duration"`
		RefreshDuration string `yaml:"refresh_duration"`
		BcryptCost      int    `yaml:"bcrypt_cost"`
	}

	// RateLimitConfig configures the fixed-window limiter guarding the
	// anonymous auth endpoints. Disabled when Redis.Addr is empty.
	RateLimitConfig struct {
		Enabled  bool          `yaml:"enabled"`
		Requests int           `yaml:"requests"`
		Window   time.Duration `yaml:"window"`
		Redis    RedisConfig   `yaml:"redis"`
	}

	RedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
	}

	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// TracingConfig configures OTLP trace export
	TracingConfig struct {
		Enabled     bool              `yaml:"enabled"`
		ServiceName string            `yaml:"service_name"`
		Endpoint    string            `yaml:"endpoint"` // e.g. localhost:4317 or http://localhost:4318
		Protocol    string            `yaml:"protocol"` // grpc or http
		Insecure    bool              `yaml:"insecure"`
		SamplerRate float64           `yaml:"sampler_rate"` // 0.0~1.0
		Environment string            `yaml:"environment"`  // dev/staging/prod
		Headers     map[string]string `yaml:"headers"`
	}

	I18nConfig struct {
		Path            string `yaml:"path"`             // path to translation files
		DefaultLanguage string `yaml:"default_language"` // en, es
	}
)

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "sqlite":
		return c.DBName // for SQLite, DBName is the file path
	default:
		return ""
	}
}

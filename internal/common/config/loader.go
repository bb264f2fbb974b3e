package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/migestion/migestion/pkg/helper"
)

// Type constrains the configuration structs LoadConfig can produce.
type Type interface {
	APIServerConfig
}

// LoadConfig loads configuration from a YAML file with environment variable
// support. Values of the form ${VAR} or ${VAR:default} are resolved from the
// environment before unmarshalling; a .env file is honored when present.
func LoadConfig[T Type](filename string) (*T, string, error) {
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	data = resolveEnv(data)
	var cfg T
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	if apiCfg, ok := any(&cfg).(*APIServerConfig); ok {
		apiCfg.setDefaults()
	}

	return &cfg, cfgPath, nil
}

func resolveEnv(content []byte) []byte {
	regex := regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

	return regex.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := regex.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}

func (c *APIServerConfig) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Auth.AccessDuration == "" {
		c.Auth.AccessDuration = "15m"
	}
	if c.Auth.RefreshDuration == "" {
		c.Auth.RefreshDuration = "7d"
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 20
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.I18n.DefaultLanguage == "" {
		c.I18n.DefaultLanguage = "en"
	}
}

// Validate checks the parts of the configuration whose failure would only
// surface deep inside a request otherwise.
func (c *APIServerConfig) Validate() error {
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database type: %q", c.Database.Type)
	}

	if len(c.Auth.AccessSecret) < 32 || len(c.Auth.RefreshSecret) < 32 {
		return fmt.Errorf("auth secrets must be at least 32 characters")
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return fmt.Errorf("access and refresh secrets must differ")
	}

	return nil
}

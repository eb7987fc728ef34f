package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (if present) and the environment.
func Load() (*Config, error) {
	return LoadWithViper(viper.New(), "")
}

// LoadWithViper loads configuration into v. An explicit file path, when
// given, replaces the default search paths.
func LoadWithViper(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("/app/configs")
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	v.BindEnv("rabbitmq.url", "RABBITMQ_URL", "APP_RABBITMQ_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	v.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	v.BindEnv("reports.api_base_url", "REPORTS_API_URL", "APP_REPORTS_API_BASE_URL")
	v.BindEnv("reports.api_token", "REPORTS_API_TOKEN", "APP_REPORTS_API_TOKEN")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sigec-reports")
	v.SetDefault("app.version", "v1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.idle_timeout", 120*time.Second)

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("queue.provider", "none")
	v.SetDefault("nats.url", "nats://localhost:4222")

	v.SetDefault("jwt.access_token_duration", 15*time.Minute)
	v.SetDefault("jwt.issuer", "sigec-ve")

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 0.6)

	v.SetDefault("reports.source", "api")
	v.SetDefault("reports.request_timeout", 30*time.Second)
	v.SetDefault("reports.page_size", 200)
	v.SetDefault("reports.max_pages", 30)
	v.SetDefault("reports.newest_first", true)
	v.SetDefault("reports.timezone", "UTC")
	v.SetDefault("reports.cache_ttl", 2*time.Minute)
}

// Validate checks settings that would otherwise fail late at request time.
func (c *Config) Validate() error {
	switch c.Reports.Source {
	case "api":
		if c.Reports.APIBaseURL == "" {
			return fmt.Errorf("reports.api_base_url is required when reports.source is api")
		}
	case "postgres":
		if c.Database.URL == "" && !c.Vault.Enabled {
			return fmt.Errorf("database.url is required when reports.source is postgres")
		}
	default:
		return fmt.Errorf("invalid reports.source %q", c.Reports.Source)
	}

	switch c.Queue.Provider {
	case "", "none", "nats", "rabbitmq":
	default:
		return fmt.Errorf("invalid queue.provider %q", c.Queue.Provider)
	}

	if _, err := c.Reports.Location(); err != nil {
		return fmt.Errorf("invalid reports.timezone: %w", err)
	}

	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hostwatch")
	}

	// Environment variable settings
	v.SetEnvPrefix("HOSTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "hostwatch")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "30s")

	// Sampler defaults
	v.SetDefault("sampler.type", "simulated")
	v.SetDefault("sampler.endpoint", "http://localhost:9000")
	v.SetDefault("sampler.interval", "30s")
	v.SetDefault("sampler.timeout", "5s")
	v.SetDefault("sampler.pattern", "steady")

	// Retention defaults
	v.SetDefault("retention.sample_window", "720h") // 30 days
	v.SetDefault("retention.anomaly_window", "168h") // 7 days
	v.SetDefault("retention.prune_every", 100)

	// Baseline defaults
	v.SetDefault("baseline.window", "168h") // 7 days
	v.SetDefault("baseline.refresh_interval", "24h")
	v.SetDefault("baseline.min_samples", 24)

	// Evaluator defaults
	v.SetDefault("evaluator.epsilon", 0.01)

	// Notifier defaults
	v.SetDefault("notifier.dispatch_timeout", "5s")
	v.SetDefault("notifier.circuit_breaker.max_failures", 5)
	v.SetDefault("notifier.circuit_breaker.reset_timeout", "30s")

	// Storage defaults
	v.SetDefault("storage.data_dir", "./data")

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.jwt_secret", "change-me-in-production")
	v.SetDefault("api.jwt_duration", "24h")
	v.SetDefault("api.admin_user", "admin")
	v.SetDefault("api.rate_limit", 120)
	v.SetDefault("api.default_limit", 100)
	v.SetDefault("api.max_limit", 1000)

	// WebSocket defaults
	v.SetDefault("websocket.broadcast_buffer", 256)
	v.SetDefault("websocket.client_buffer", 256)

	// Events defaults
	v.SetDefault("events.buffer_size", 100)

	// Prometheus defaults
	v.SetDefault("prometheus.enabled", true)
}

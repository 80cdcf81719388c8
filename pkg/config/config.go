package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Sampler    SamplerConfig    `mapstructure:"sampler"`
	Retention  RetentionConfig  `mapstructure:"retention"`
	Baseline   BaselineConfig   `mapstructure:"baseline"`
	Evaluator  EvaluatorConfig  `mapstructure:"evaluator"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Storage    StorageConfig    `mapstructure:"storage"`
	API        APIConfig        `mapstructure:"api"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
	Events     EventsConfig     `mapstructure:"events"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SamplerConfig struct {
	Type     string        `mapstructure:"type"`
	Endpoint string        `mapstructure:"endpoint"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Pattern  string        `mapstructure:"pattern"`
}

type RetentionConfig struct {
	SampleWindow  time.Duration `mapstructure:"sample_window"`
	AnomalyWindow time.Duration `mapstructure:"anomaly_window"`
	PruneEvery    int           `mapstructure:"prune_every"`
}

type BaselineConfig struct {
	Window          time.Duration `mapstructure:"window"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MinSamples      int           `mapstructure:"min_samples"`
}

type EvaluatorConfig struct {
	Epsilon float64 `mapstructure:"epsilon"`
}

type NotifierConfig struct {
	DiscordWebhookURL string               `mapstructure:"discord_webhook_url"`
	DispatchTimeout   time.Duration        `mapstructure:"dispatch_timeout"`
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxFailures  int           `mapstructure:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

type APIConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTDuration    time.Duration `mapstructure:"jwt_duration"`
	AdminUser      string        `mapstructure:"admin_user"`
	AdminPassword  string        `mapstructure:"admin_password_hash"`
	RateLimit      int           `mapstructure:"rate_limit"`
	DefaultLimit   int           `mapstructure:"default_limit"`
	MaxLimit       int           `mapstructure:"max_limit"`
	CORS           CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type WebSocketConfig struct {
	BroadcastBuffer int `mapstructure:"broadcast_buffer"`
	ClientBuffer    int `mapstructure:"client_buffer"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

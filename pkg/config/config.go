package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Gateway struct {
		Address         string        `yaml:"address"`
		PingInterval    time.Duration `yaml:"ping_interval"`
		PongTimeout     time.Duration `yaml:"pong_timeout"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"gateway"`

	Ops struct {
		Address string `yaml:"address"`
	} `yaml:"ops"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	Storage struct {
		// Backend selects the record-store implementation:
		// "file" (default), "redis", or "memory".
		Backend string `yaml:"backend"`
		Dir     string `yaml:"dir"`
		Redis   struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Game struct {
		TurnTimeout   time.Duration `yaml:"turn_timeout"`
		MinPlayers    int           `yaml:"min_players"`
		ChamberBlanks int           `yaml:"chamber_blanks"`
		ChamberLive   int           `yaml:"chamber_live"`
	} `yaml:"game"`

	Moderation struct {
		RandomMuteEnabled  bool          `yaml:"random_mute_enabled"`
		RandomMuteChance   float64       `yaml:"random_mute_chance"`
		RandomMuteDuration time.Duration `yaml:"random_mute_duration"`
	} `yaml:"moderation"`

	RateLimiting struct {
		Enabled         bool    `yaml:"enabled"`
		EventsPerSecond float64 `yaml:"events_per_second"`
		Burst           int     `yaml:"burst"`
	} `yaml:"rate_limiting"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Gateway.Address == "" {
		return fmt.Errorf("gateway.address must not be empty")
	}
	if c.Gateway.PingInterval <= 0 {
		return fmt.Errorf("gateway.ping_interval must be > 0")
	}
	if c.Gateway.PongTimeout <= 0 {
		return fmt.Errorf("gateway.pong_timeout must be > 0")
	}
	if c.Gateway.RequestTimeout <= 0 {
		return fmt.Errorf("gateway.request_timeout must be > 0")
	}
	if c.Gateway.ShutdownTimeout <= 0 {
		return fmt.Errorf("gateway.shutdown_timeout must be > 0")
	}

	if c.Ops.Address == "" {
		return fmt.Errorf("ops.address must not be empty")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}

	switch c.Storage.Backend {
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir must not be empty when storage.backend=file")
		}
	case "redis":
		if c.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address must not be empty when storage.backend=redis")
		}
		if c.Storage.Redis.PoolSize <= 0 {
			return fmt.Errorf("storage.redis.pool_size must be > 0 when storage.backend=redis")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.backend must be one of file, redis, memory")
	}

	if c.Game.TurnTimeout <= 0 {
		return fmt.Errorf("game.turn_timeout must be > 0")
	}
	if c.Game.MinPlayers < 2 {
		return fmt.Errorf("game.min_players must be >= 2")
	}
	if c.Game.ChamberBlanks < 0 || c.Game.ChamberLive <= 0 {
		return fmt.Errorf("game chamber must contain at least one live round")
	}

	if c.Moderation.RandomMuteEnabled {
		if c.Moderation.RandomMuteChance <= 0 || c.Moderation.RandomMuteChance >= 1 {
			return fmt.Errorf("moderation.random_mute_chance must be in (0, 1)")
		}
		if c.Moderation.RandomMuteDuration <= 0 {
			return fmt.Errorf("moderation.random_mute_duration must be > 0")
		}
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.EventsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.events_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFirst loads the first candidate path that exists on disk and reports
// which one won. Load treats a missing file as defaults, so existence is
// checked before loading. When no candidate exists, defaults plus env
// overrides apply and the returned path is empty.
func LoadFirst(paths ...string) (*Config, string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		return cfg, path, err
	}

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	return cfg, "", nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Gateway.Address = ":8081"
	cfg.Gateway.PingInterval = 30 * time.Second
	cfg.Gateway.PongTimeout = 60 * time.Second
	cfg.Gateway.RequestTimeout = 5 * time.Second
	cfg.Gateway.ShutdownTimeout = 30 * time.Second

	cfg.Ops.Address = ":8080"

	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.TokenTTL = 24 * time.Hour

	cfg.Storage.Backend = "file"
	cfg.Storage.Dir = "database"
	cfg.Storage.Redis.Address = "localhost:6379"
	cfg.Storage.Redis.DB = 0
	cfg.Storage.Redis.PoolSize = 10

	cfg.Game.TurnTimeout = 60 * time.Second
	cfg.Game.MinPlayers = 2
	cfg.Game.ChamberBlanks = 5
	cfg.Game.ChamberLive = 1

	cfg.Moderation.RandomMuteEnabled = false
	cfg.Moderation.RandomMuteChance = 0.01
	cfg.Moderation.RandomMuteDuration = time.Minute

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.EventsPerSecond = 10
	cfg.RateLimiting.Burst = 20

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "wardenbot"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("WARDEN_GATEWAY_ADDRESS"); addr != "" {
		c.Gateway.Address = addr
	}
	if addr := os.Getenv("WARDEN_OPS_ADDRESS"); addr != "" {
		c.Ops.Address = addr
	}
	if level := os.Getenv("WARDEN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("WARDEN_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if backend := os.Getenv("WARDEN_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if addr := os.Getenv("WARDEN_REDIS_ADDRESS"); addr != "" {
		c.Storage.Redis.Address = addr
	}
}

package innerlife

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config collects the package's runtime settings, populated from the
// environment. An empty SQLitePath selects the in-memory repository; an
// empty RedisAddr selects in-memory usage tracking.
type Config struct {
	SQLitePath string `env:"INNERLIFE_SQLITE_PATH" env-default:""`
	RedisAddr  string `env:"INNERLIFE_REDIS_ADDR" env-default:""`
	RedisDB    int    `env:"INNERLIFE_REDIS_DB" env-default:"0"`

	StateCacheTTL    time.Duration `env:"INNERLIFE_STATE_CACHE_TTL" env-default:"5m"`
	EventsCacheTTL   time.Duration `env:"INNERLIFE_EVENTS_CACHE_TTL" env-default:"10m"`
	BreakerThreshold int           `env:"INNERLIFE_BREAKER_THRESHOLD" env-default:"3"`
	BreakerCooldown  time.Duration `env:"INNERLIFE_BREAKER_COOLDOWN" env-default:"30s"`

	UserUsageTTL         time.Duration `env:"INNERLIFE_USER_USAGE_TTL" env-default:"720h"`
	ConversationUsageTTL time.Duration `env:"INNERLIFE_CONVERSATION_USAGE_TTL" env-default:"168h"`

	GenerateInterval time.Duration `env:"INNERLIFE_GENERATE_INTERVAL" env-default:"1h"`
	SweepInterval    time.Duration `env:"INNERLIFE_SWEEP_INTERVAL" env-default:"15m"`
	SweepBatch       int           `env:"INNERLIFE_SWEEP_BATCH" env-default:"10"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) engineConfig() EngineConfig {
	return EngineConfig{
		StateCacheTTL:    c.StateCacheTTL,
		EventsCacheTTL:   c.EventsCacheTTL,
		BreakerThreshold: c.BreakerThreshold,
		BreakerCooldown:  c.BreakerCooldown,
	}
}

func (c *Config) schedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		GenerateInterval: c.GenerateInterval,
		SweepInterval:    c.SweepInterval,
		SweepBatch:       c.SweepBatch,
	}
}

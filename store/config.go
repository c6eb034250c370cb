package store

import (
	"fmt"
	"time"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures the history backend.
type Config struct {
	Backend  string      `mapstructure:"backend" yaml:"backend"`
	Capacity int         `mapstructure:"capacity" yaml:"capacity"`
	Redis    RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig configures RedisAdapter.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Open builds the run history described by cfg. An empty backend means memory.
func Open(cfg Config) (*Runs, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewRuns(NewMemoryAdapter(cfg.Capacity)), nil
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("store: redis backend needs an address")
		}
		opts := []RedisOption{WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, WithPrefix(cfg.Redis.Prefix))
		}
		return NewRuns(NewRedisAdapter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}

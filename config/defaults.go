package config

import (
	"time"

	"github.com/Keksclan/gradebook/cache"
)

// Defaults returns a complete configuration: a local sqlite file, JSON logs
// on stdout, one-minute caches of 100 entries and no rate limits.
func Defaults() *Config {
	caches := make(map[string]CacheConfig, len(CacheNames))
	for _, name := range CacheNames {
		caches[name] = CacheConfig{
			TTL:     Duration(cache.DefaultTTL),
			MaxSize: cache.DefaultMaxSize,
		}
	}
	return &Config{
		Server: ServerConfig{
			GRPCAddr:        ":9090",
			MetricsAddr:     ":9091",
			Timeout:         Duration(10 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{DSN: "file:gradebook.db?_pragma=busy_timeout(5000)"},
		Log:      LogConfig{Level: "info", Format: "json", Output: "stdout"},
		Cache:    caches,
	}
}

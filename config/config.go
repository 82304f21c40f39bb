// Package config loads the gradebook server configuration from YAML.
// Values may reference the environment as ${VAR} or ${VAR:-default}; "$$"
// produces a literal dollar sign.
package config

import (
	"github.com/Keksclan/gradebook/cache"
	"github.com/Keksclan/gradebook/policy"
)

// Cache names, one per service.
const (
	CacheStudents   = "students"
	CacheGroups     = "groups"
	CacheSubjects   = "subjects"
	CacheMarks      = "marks"
	CacheEnrollment = "enrollment"
)

// CacheNames lists every cache the server creates.
var CacheNames = []string{CacheStudents, CacheGroups, CacheSubjects, CacheMarks, CacheEnrollment}

// Config is the root of the configuration file.
type Config struct {
	Server    ServerConfig           `yaml:"server"`
	Database  DatabaseConfig         `yaml:"database"`
	Log       LogConfig              `yaml:"log"`
	Cache     map[string]CacheConfig `yaml:"cache" validate:"dive"`
	RateLimit RateLimitConfig        `yaml:"rateLimit"`
	Tracing   TracingConfig          `yaml:"tracing"`
}

type ServerConfig struct {
	GRPCAddr        string   `yaml:"grpcAddr" validate:"required,hostname_port"`
	MetricsAddr     string   `yaml:"metricsAddr" validate:"omitempty,hostname_port"`
	Timeout         Duration `yaml:"timeout" validate:"gte=0"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" validate:"gte=0"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
	// Output is stdout, stderr or a file path. Only a file can be served
	// back through the Logs service.
	Output string `yaml:"output"`
}

// File returns the log file path, or false when logs go to a stream.
func (l LogConfig) File() (string, bool) {
	switch l.Output {
	case "", "stdout", "stderr":
		return "", false
	}
	return l.Output, true
}

type CacheConfig struct {
	TTL           Duration `yaml:"ttl" validate:"gte=0"`
	MaxSize       int      `yaml:"maxSize" validate:"gte=0"`
	SweepInterval Duration `yaml:"sweepInterval" validate:"gte=0"`
}

// CacheConfig returns the cache settings for name. Unknown names get the
// cache package defaults.
func (c *Config) CacheConfig(name string) cache.Config {
	cc := c.Cache[name]
	return cache.Config{
		Name:          name,
		TTL:           cc.TTL.Std(),
		MaxSize:       cc.MaxSize,
		SweepInterval: cc.SweepInterval.Std(),
	}
}

type RateLimitConfig struct {
	// RPS and Burst configure the global bucket; RPS 0 disables it.
	RPS   float64 `yaml:"rps" validate:"gte=0"`
	Burst int     `yaml:"burst" validate:"gte=0"`
	// Services maps a full service name such as gradebook.Marks to its own
	// limit and timeout.
	Services map[string]ServicePolicy `yaml:"services" validate:"dive"`
}

type ServicePolicy struct {
	Rate    int      `yaml:"rate" validate:"gte=0"`
	Window  Duration `yaml:"window" validate:"gte=0"`
	Timeout Duration `yaml:"timeout" validate:"gte=0"`
}

// Policies converts the per-service rules into policy groups.
func (r RateLimitConfig) Policies() []*policy.GroupBuilder {
	groups := make([]*policy.GroupBuilder, 0, len(r.Services))
	for _, name := range sortedKeys(r.Services) {
		sp := r.Services[name]
		p := policy.Policy{Timeout: sp.Timeout.Std()}
		if sp.Rate > 0 {
			p.RateLimit = &policy.RateLimitRule{Rate: sp.Rate, Window: sp.Window.Std()}
		}
		groups = append(groups, policy.Service(name).Policy(p))
	}
	return groups
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Stdout exports spans as JSON to standard output.
	Stdout bool `yaml:"stdout"`
}

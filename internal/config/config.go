// Package config loads and validates monitor configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/registry"
)

// Config captures all monitor configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Targets  []TargetConfig `mapstructure:"targets"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ScrapeConfig governs the fan-out over the target registry.
type ScrapeConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	Mode        string `mapstructure:"mode"`
	DumpDir     string `mapstructure:"dump_dir"`
}

// HTTPConfig configures the direct HTTP client.
type HTTPConfig struct {
	UserAgent        string `mapstructure:"user_agent"`
	VerifySSL        bool   `mapstructure:"verify_ssl"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
}

// HeadlessConfig configures the headless rendering subsystem. Enabled
// gates rendering altogether; Visible runs the browser with a window
// for local debugging of a misbehaving dashboard.
type HeadlessConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	Visible           bool `mapstructure:"visible"`
	NavTimeoutSec     int  `mapstructure:"nav_timeout_seconds"`
	ShellTimeoutSec   int  `mapstructure:"shell_timeout_seconds"`
	MetricsTimeoutSec int  `mapstructure:"metrics_timeout_seconds"`
	FrameTimeoutSec   int  `mapstructure:"frame_timeout_seconds"`
	PollIntervalMs    int  `mapstructure:"poll_interval_ms"`
	PerHostQPS        int  `mapstructure:"per_host_qps"`
}

// CacheConfig sets the path and freshness window of the result cache.
type CacheConfig struct {
	Path       string `mapstructure:"path"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// TargetConfig is one dashboard entry in the config file.
type TargetConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("UPA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("scrape.concurrency", 6)
	v.SetDefault("scrape.mode", "auto")
	v.SetDefault("scrape.dump_dir", "debug")
	v.SetDefault("http.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	v.SetDefault("http.verify_ssl", true)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 800)
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.visible", false)
	v.SetDefault("headless.nav_timeout_seconds", 70)
	v.SetDefault("headless.shell_timeout_seconds", 45)
	v.SetDefault("headless.metrics_timeout_seconds", 35)
	v.SetDefault("headless.frame_timeout_seconds", 25)
	v.SetDefault("headless.poll_interval_ms", 500)
	v.SetDefault("headless.per_host_qps", 1)
	v.SetDefault("cache.path", "data/cache.json")
	v.SetDefault("cache.ttl_seconds", 120)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scrape.Concurrency <= 0 {
		return fmt.Errorf("scrape.concurrency must be > 0")
	}
	switch c.Scrape.Mode {
	case "direct", "rendered", "auto":
	default:
		return fmt.Errorf("scrape.mode must be one of direct, rendered, auto (got %q)", c.Scrape.Mode)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be > 0")
	}
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path must be set")
	}
	return registry.Validate(c.ResolveTargets())
}

// ResolveTargets returns the configured targets, or the built-in UPA
// registry when the config names none.
func (c Config) ResolveTargets() []dashboard.Target {
	if len(c.Targets) == 0 {
		return registry.Defaults()
	}
	targets := make([]dashboard.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		targets = append(targets, dashboard.Target{Name: t.Name, URL: t.URL})
	}
	return targets
}

// TTL converts the cache freshness window into a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// HTTPTimeout converts the direct client timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BackoffBase converts the initial backoff into a duration.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.HTTP.BackoffInitialMs) * time.Millisecond
}

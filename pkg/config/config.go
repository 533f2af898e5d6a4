// Package config loads vibetime settings from TOML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath names the environment variable holding an explicit config path.
const EnvConfigPath = "VIBETIME_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Store     StoreConfig     `toml:"store"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Maps      MapsConfig      `toml:"maps"`
	Server    ServerConfig    `toml:"server"`
	Suggest   SuggestConfig   `toml:"suggest"`
	Bootstrap BootstrapConfig `toml:"bootstrap"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	LogLevel string `toml:"log_level"`
	Theme    string `toml:"theme"`
}

// StoreConfig selects and configures the state backend
type StoreConfig struct {
	Backend       string `toml:"backend"` // "file" or "redis"
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisPrefix   string `toml:"redis_prefix"`
	RedisDB       int    `toml:"redis_db"`
}

// GeminiConfig holds generative AI settings
type GeminiConfig struct {
	APIKey            string   `toml:"api_key"`
	Model             string   `toml:"model"`
	GCPProject        string   `toml:"gcp_project"`
	Location          string   `toml:"location"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
}

// MapsConfig holds Google Maps settings
type MapsConfig struct {
	APIKey string `toml:"api_key"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr              string   `toml:"addr"`
	ReadTimeout       Duration `toml:"read_timeout"`
	WriteTimeout      Duration `toml:"write_timeout"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
	Burst             int      `toml:"burst"`
}

// SuggestConfig holds search-box settings
type SuggestConfig struct {
	Debounce       Duration `toml:"debounce"`
	MinQueryLength int      `toml:"min_query_length"`
}

// BootstrapConfig lists the cities seeded after the local zone on first run
type BootstrapConfig struct {
	Cities []BootstrapCity `toml:"cities"`
}

// BootstrapCity is one seeded city
type BootstrapCity struct {
	Name     string `toml:"name"`
	Timezone string `toml:"timezone"`
	Country  string `toml:"country"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		slog.Warn("ignoring unknown config keys", "path", path, "keys", strings.Join(keys, ","))
	}

	cfg.expandEnvVars()
	cfg.applyDefaults()
	cfg.applyEnv()

	return &cfg, nil
}

// Resolve finds the config file to use: explicit path, then VIBETIME_CONFIG,
// then ./vibetime.toml, then ~/.config/vibetime/config.toml. With no file it
// returns defaults and an empty path.
func Resolve(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		cfg, err := Load(p)
		return cfg, p, err
	}
	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			cfg, err := Load(p)
			return cfg, p, err
		}
	}
	return Default(), "", nil
}

// DefaultPaths lists the implicit config locations in lookup order.
func DefaultPaths() []string {
	paths := []string{"./vibetime.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "vibetime", "config.toml"))
	}
	return paths
}

// DefaultStateDir is where the file store keeps state when no path is configured.
func DefaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "vibetime")
	}
	return ".vibetime"
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.Theme == "" {
		c.General.Theme = "light"
	}

	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStateDir()
	}
	if c.Store.RedisPrefix == "" {
		c.Store.RedisPrefix = "vibetime"
	}

	if c.Gemini.Timeout.Duration == 0 {
		c.Gemini.Timeout.Duration = 10 * time.Second
	}
	if c.Gemini.RequestsPerMinute == 0 {
		c.Gemini.RequestsPerMinute = 60
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 10 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.RequestsPerMinute == 0 {
		c.Server.RequestsPerMinute = 120
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = 20
	}

	if c.Suggest.Debounce.Duration == 0 {
		c.Suggest.Debounce.Duration = 200 * time.Millisecond
	}
	if c.Suggest.MinQueryLength == 0 {
		c.Suggest.MinQueryLength = 2
	}
}

// applyEnv fills secrets and endpoints from the environment when the file left them empty.
func (c *Config) applyEnv() {
	fill := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	fill(&c.Gemini.APIKey, "GEMINI_API_KEY")
	fill(&c.Gemini.Model, "GEMINI_MODEL")
	fill(&c.Gemini.GCPProject, "GCP_PROJECT", "GOOGLE_CLOUD_PROJECT")
	fill(&c.Maps.APIKey, "GOOGLE_MAPS_API_KEY")
	fill(&c.Store.RedisAddr, "REDIS_ADDR")
	fill(&c.Store.RedisPassword, "REDIS_PASSWORD")
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.Gemini.APIKey = os.ExpandEnv(c.Gemini.APIKey)
	c.Gemini.GCPProject = os.ExpandEnv(c.Gemini.GCPProject)
	c.Maps.APIKey = os.ExpandEnv(c.Maps.APIKey)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
	c.Store.RedisAddr = os.ExpandEnv(c.Store.RedisAddr)
	c.Store.RedisPassword = os.ExpandEnv(c.Store.RedisPassword)
}

// LogLevel maps the configured level name onto slog.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.General.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks settings that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "file":
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store backend redis requires redis_addr or REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want file or redis)", c.Store.Backend)
	}
	for i, city := range c.Bootstrap.Cities {
		if city.Timezone == "" {
			return fmt.Errorf("bootstrap city %d (%s) has no timezone", i, city.Name)
		}
	}
	return nil
}

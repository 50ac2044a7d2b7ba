package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"festcal/internal/palette"
)

const (
	defaultListen   = "127.0.0.1:8080"
	defaultTick     = "@every 1s"
	defaultLogLevel = "info"
)

// StageConfig pins a display color to a stage name. Stages without an
// entry get a generated palette color.
type StageConfig struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"` // #rrggbb
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone the schedule is read in and "now" is
	// evaluated in. Empty means the host's local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Schedule is the path of the lineup file. Empty uses the bundled
	// lineup.
	Schedule string `yaml:"schedule" json:"schedule"`

	// ScheduleFormat is "csv" or "ics". Empty infers it from the file
	// extension.
	ScheduleFormat string `yaml:"schedule_format" json:"schedule_format"`

	// Tick is the cron spec of the clock that re-evaluates the active day
	// (e.g. "@every 1s", "*/1 * * * *").
	Tick string `yaml:"tick" json:"tick"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Stages pins colors to stage names.
	Stages []StageConfig `yaml:"stages" json:"stages"`

	// BasicAuth, if set with both fields, protects every endpoint except
	// /health and /metrics.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   defaultListen,
		Tick:     defaultTick,
		LogLevel: defaultLogLevel,
		Stages:   []StageConfig{},
	}
}

// Normalize fills in missing values so that partially-filled configs still
// behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Tick == "" {
		c.Tick = defaultTick
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = defaultLogLevel
	}
	c.ScheduleFormat = strings.ToLower(strings.TrimSpace(c.ScheduleFormat))
	if c.Stages == nil {
		c.Stages = []StageConfig{}
	}
}

// Location resolves Timezone. An empty or unknown zone yields time.Local
// together with the lookup error, if any.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// StageColors parses the configured stage colors into a name -> color map.
func (c *Config) StageColors() (map[string]palette.Color, error) {
	out := make(map[string]palette.Color, len(c.Stages))
	for _, s := range c.Stages {
		if s.Name == "" {
			return nil, errors.New("config: stage color entry without name")
		}
		col, err := palette.ParseHex(s.Color)
		if err != nil {
			return nil, fmt.Errorf("config: stage %q: %w", s.Name, err)
		}
		out[s.Name] = col
	}
	return out, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there with
//     0600 perms and returned.
//   - Otherwise the YAML is decoded and normalized.
//
// Environment overrides (see ApplyEnv) are not applied here.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".festcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// LoadEnv reads .env style files into the process environment. Missing
// files are not an error. With no paths, ".env" is used.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides fields from FESTCAL_* environment variables.
func (c *Config) ApplyEnv() {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("FESTCAL_LISTEN", &c.Listen)
	set("FESTCAL_TIMEZONE", &c.Timezone)
	set("FESTCAL_SCHEDULE", &c.Schedule)
	set("FESTCAL_SCHEDULE_FORMAT", &c.ScheduleFormat)
	set("FESTCAL_TICK", &c.Tick)
	set("FESTCAL_LOG_LEVEL", &c.LogLevel)

	user, pass := os.Getenv("FESTCAL_BASIC_AUTH_USER"), os.Getenv("FESTCAL_BASIC_AUTH_PASSWORD")
	if user != "" && pass != "" {
		c.BasicAuth = &BasicAuthConfig{Username: user, Password: pass}
	}
	c.Normalize()
}

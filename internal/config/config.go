package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gerunddev/markbridge/internal/markdown"
	"github.com/gerunddev/markbridge/internal/render"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, as in MARKBRIDGE_TO=html
const EnvPrefix = "MARKBRIDGE"

// Config represents the markbridge configuration
type Config struct {
	From            string        `mapstructure:"from"`
	To              string        `mapstructure:"to"`
	Flavor          string        `mapstructure:"flavor"`
	Emoji           bool          `mapstructure:"emoji"`
	Sanitize        bool          `mapstructure:"sanitize"`
	HighlightStyle  string        `mapstructure:"highlight_style"`
	SourceDir       string        `mapstructure:"source_dir"`
	OutputDir       string        `mapstructure:"output_dir"`
	LogFile         string        `mapstructure:"log_file"`
	LogLevel        string        `mapstructure:"log_level"`
	Workers         int           `mapstructure:"workers"`
	Interval        time.Duration `mapstructure:"interval"`
	ServerAddress   string        `mapstructure:"server_address"`
	RedisAddress    string        `mapstructure:"redis_address"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	ExcludePatterns []string      `mapstructure:"exclude_patterns"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		From:            string(convert.BBCode),
		To:              string(convert.Markdown),
		Flavor:          string(markdown.GFM),
		SourceDir:       filepath.Join(home, "markbridge", "src"),
		OutputDir:       filepath.Join(home, "markbridge", "out"),
		LogFile:         "/tmp/markbridge.log",
		LogLevel:        "info",
		Workers:         4,
		Interval:        30 * time.Second,
		ServerAddress:   "0.0.0.0:8080",
		CacheTTL:        10 * time.Minute,
		ExcludePatterns: []string{},
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(xdg.ConfigHome, "markbridge", "config.yaml")
	}
	return filepath.Join(home, ".config", "markbridge", "config.yaml")
}

// StateFilePath returns the path to the state file
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "markbridge", "state.json")
}

// newViper binds the config file and MARKBRIDGE_* variables over the
// defaults. Every key needs a default for the environment to reach it.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("from", d.From)
	v.SetDefault("to", d.To)
	v.SetDefault("flavor", d.Flavor)
	v.SetDefault("emoji", d.Emoji)
	v.SetDefault("sanitize", d.Sanitize)
	v.SetDefault("highlight_style", d.HighlightStyle)
	v.SetDefault("source_dir", d.SourceDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("server_address", d.ServerAddress)
	v.SetDefault("redis_address", d.RedisAddress)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("exclude_patterns", d.ExcludePatterns)
	return v
}

// Load reads the config file, applies environment overrides, then
// validates and expands paths. A missing file yields the defaults.
func Load() (*Config, error) {
	v := newViper(ConfigPath())
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.ExcludePatterns == nil {
		cfg.ExcludePatterns = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// fileConfig is the on-disk form, with durations as strings
type fileConfig struct {
	From            string   `yaml:"from"`
	To              string   `yaml:"to"`
	Flavor          string   `yaml:"flavor"`
	Emoji           bool     `yaml:"emoji"`
	Sanitize        bool     `yaml:"sanitize"`
	HighlightStyle  string   `yaml:"highlight_style,omitempty"`
	SourceDir       string   `yaml:"source_dir"`
	OutputDir       string   `yaml:"output_dir"`
	LogFile         string   `yaml:"log_file"`
	LogLevel        string   `yaml:"log_level"`
	Workers         int      `yaml:"workers"`
	Interval        string   `yaml:"interval"`
	ServerAddress   string   `yaml:"server_address"`
	RedisAddress    string   `yaml:"redis_address,omitempty"`
	CacheTTL        string   `yaml:"cache_ttl"`
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
}

// Marshal encodes the configuration as it is written to disk
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(fileConfig{
		From:            c.From,
		To:              c.To,
		Flavor:          c.Flavor,
		Emoji:           c.Emoji,
		Sanitize:        c.Sanitize,
		HighlightStyle:  c.HighlightStyle,
		SourceDir:       c.SourceDir,
		OutputDir:       c.OutputDir,
		LogFile:         c.LogFile,
		LogLevel:        c.LogLevel,
		Workers:         c.Workers,
		Interval:        c.Interval.String(),
		ServerAddress:   c.ServerAddress,
		RedisAddress:    c.RedisAddress,
		CacheTTL:        c.CacheTTL.String(),
		ExcludePatterns: c.ExcludePatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes configuration to the config path as YAML
func (c *Config) Save() error {
	configPath := ConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	from, err := convert.ParseFormat(c.From)
	if err != nil {
		return fmt.Errorf("invalid from '%s': %w", c.From, err)
	}
	if !from.Readable() {
		return fmt.Errorf("invalid from '%s': %w", c.From, convert.ErrUnsupportedSource)
	}
	if _, err := convert.ParseFormat(c.To); err != nil {
		return fmt.Errorf("invalid to '%s': %w", c.To, err)
	}
	if !slices.Contains(markdown.Flavors, markdown.Flavor(c.Flavor)) {
		return fmt.Errorf("invalid flavor '%s': must be one of: commonmark, gfm", c.Flavor)
	}
	if c.LogFile == "" {
		return fmt.Errorf("log_file cannot be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level '%s': %w", c.LogLevel, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address cannot be empty")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl cannot be negative")
	}
	for _, pattern := range c.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.SourceDir, err = expandPath(c.SourceDir)
	if err != nil {
		return fmt.Errorf("failed to expand source_dir: %w", err)
	}

	c.OutputDir, err = expandPath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// Level returns the parsed log level
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ConverterOptions maps the conversion settings onto converter options
func (c *Config) ConverterOptions() convert.Options {
	return convert.Options{
		Markdown: markdown.Options{
			Flavor: markdown.Flavor(c.Flavor),
			Emoji:  c.Emoji,
		},
		HTML: render.HTMLOptions{
			Sanitize:       c.Sanitize,
			HighlightStyle: c.HighlightStyle,
		},
	}
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}

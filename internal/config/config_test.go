package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gerunddev/markbridge/internal/markdown"
)

// useConfigPath points ConfigPath at a file in a temporary directory
func useConfigPath(t *testing.T) string {
	t.Helper()
	testConfigPath := filepath.Join(t.TempDir(), "config.yaml")

	originalConfigPath := ConfigPath
	ConfigPath = func() string {
		return testConfigPath
	}
	t.Cleanup(func() {
		ConfigPath = originalConfigPath
	})
	return testConfigPath
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.From != "bbcode" {
		t.Errorf("Expected From to be bbcode, got %q", cfg.From)
	}
	if cfg.To != "markdown" {
		t.Errorf("Expected To to be markdown, got %q", cfg.To)
	}
	if cfg.LogFile == "" {
		t.Error("Expected LogFile to be set")
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Workers)
	}
	if cfg.Interval != 30*time.Second {
		t.Errorf("Expected Interval to be 30s, got %v", cfg.Interval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "format alias",
			modify:  func(c *Config) { c.From = "md"; c.To = "txt" },
			wantErr: false,
		},
		{
			name:    "unknown from",
			modify:  func(c *Config) { c.From = "org" },
			wantErr: true,
		},
		{
			name:    "html is not a source",
			modify:  func(c *Config) { c.From = "html" },
			wantErr: true,
		},
		{
			name:    "unknown to",
			modify:  func(c *Config) { c.To = "pdf" },
			wantErr: true,
		},
		{
			name:    "unknown flavor",
			modify:  func(c *Config) { c.Flavor = "mdx" },
			wantErr: true,
		},
		{
			name:    "empty log_file",
			modify:  func(c *Config) { c.LogFile = "" },
			wantErr: true,
		},
		{
			name:    "bad log_level",
			modify:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: true,
		},
		{
			name:    "zero workers",
			modify:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "zero interval",
			modify:  func(c *Config) { c.Interval = 0 },
			wantErr: true,
		},
		{
			name:    "negative cache_ttl",
			modify:  func(c *Config) { c.CacheTTL = -time.Second },
			wantErr: true,
		},
		{
			name:    "bad exclude pattern",
			modify:  func(c *Config) { c.ExcludePatterns = []string{"[x"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	testConfigPath := useConfigPath(t)

	testCfg := DefaultConfig()
	testCfg.From = "markdown"
	testCfg.To = "html"
	testCfg.Sanitize = true
	testCfg.Interval = 45 * time.Second
	testCfg.CacheTTL = time.Minute
	testCfg.ExcludePatterns = []string{"drafts/*"}

	if err := testCfg.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(testConfigPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedCfg.Interval != testCfg.Interval {
		t.Errorf("Interval mismatch: got %v, want %v", loadedCfg.Interval, testCfg.Interval)
	}
	if loadedCfg.CacheTTL != testCfg.CacheTTL {
		t.Errorf("CacheTTL mismatch: got %v, want %v", loadedCfg.CacheTTL, testCfg.CacheTTL)
	}
	if loadedCfg.To != "html" || !loadedCfg.Sanitize {
		t.Errorf("Conversion settings not loaded: %+v", loadedCfg)
	}
	if len(loadedCfg.ExcludePatterns) != 1 || loadedCfg.ExcludePatterns[0] != "drafts/*" {
		t.Errorf("ExcludePatterns mismatch: %v", loadedCfg.ExcludePatterns)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	useConfigPath(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}

	if cfg.Interval != 30*time.Second {
		t.Errorf("Expected default interval 30s, got %v", cfg.Interval)
	}
	if cfg.ExcludePatterns == nil {
		t.Error("ExcludePatterns should never be nil")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	useConfigPath(t)
	t.Setenv("MARKBRIDGE_TO", "text")
	t.Setenv("MARKBRIDGE_WORKERS", "8")
	t.Setenv("MARKBRIDGE_INTERVAL", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.To != "text" {
		t.Errorf("Expected To from environment, got %q", cfg.To)
	}
	if cfg.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Workers)
	}
	if cfg.Interval != 2*time.Minute {
		t.Errorf("Expected 2m interval, got %v", cfg.Interval)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	testConfigPath := useConfigPath(t)

	if err := os.WriteFile(testConfigPath, []byte("workers: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("Expected error for zero workers")
	}

	if err := os.WriteFile(testConfigPath, []byte("from: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "tilde expansion",
			input:    "~/test",
			contains: homeDir,
		},
		{
			name:     "tilde only",
			input:    "~",
			contains: homeDir,
		},
		{
			name:     "absolute path",
			input:    "/tmp/test",
			contains: "/tmp/test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandPath(tt.input)
			if err != nil {
				t.Fatalf("expandPath() error = %v", err)
			}
			if result == "" {
				t.Error("expandPath() returned empty string")
			}
			if tt.input[0] == '~' && result == tt.input {
				t.Errorf("Path was not expanded: %s", result)
			}
		})
	}
}

func TestConfigPathsExpanded(t *testing.T) {
	useConfigPath(t)

	testCfg := DefaultConfig()
	testCfg.SourceDir = "~/posts"
	testCfg.OutputDir = "~/site"
	testCfg.LogFile = "~/markbridge.log"

	if err := testCfg.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedCfg.SourceDir[0] == '~' {
		t.Error("SourceDir was not expanded")
	}
	if loadedCfg.OutputDir[0] == '~' {
		t.Error("OutputDir was not expanded")
	}
	if loadedCfg.LogFile[0] == '~' {
		t.Error("LogFile was not expanded")
	}
}

func TestConverterOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Flavor = "commonmark"
	cfg.Emoji = true
	cfg.HighlightStyle = "monokai"

	opts := cfg.ConverterOptions()
	if opts.Markdown.Flavor != markdown.CommonMark || !opts.Markdown.Emoji {
		t.Errorf("Markdown options not mapped: %+v", opts.Markdown)
	}
	if opts.HTML.HighlightStyle != "monokai" {
		t.Errorf("HTML options not mapped: %+v", opts.HTML)
	}
	if cfg.Level() != log.InfoLevel {
		t.Errorf("Expected info level, got %v", cfg.Level())
	}
}

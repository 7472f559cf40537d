package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/fourup/pkg/pipeline"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
width = 1200
padding = 6
background = "#222222"
quality = 90

[cache]
backend = "redis"
redis_addr = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Width != 1200 || cfg.Padding != 6 || cfg.Quality != 90 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Background != "#222222" {
		t.Errorf("background = %q", cfg.Background)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache config = %+v", cfg.Cache)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loadConfig accepted a missing explicit file")
	}
}

func TestLoadConfigMissingDefault(t *testing.T) {
	oldXdg := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", t.TempDir())
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CONFIG_HOME", oldXdg)
		} else {
			os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig with no default file: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("cfg = %+v, want zero", cfg)
	}
}

func TestConfigApplyKeepsFlags(t *testing.T) {
	cfg := Config{Width: 1200, Padding: 6, Background: "#222222"}

	// Flags already set win over the config file.
	opts := pipeline.Options{TotalWidth: 800}
	cfg.apply(&opts)
	if opts.TotalWidth != 800 {
		t.Errorf("TotalWidth = %d, want 800", opts.TotalWidth)
	}
	if opts.Padding != 6 {
		t.Errorf("Padding = %d, want 6", opts.Padding)
	}
	if opts.Background != "#222222" {
		t.Errorf("Background = %q", opts.Background)
	}
}

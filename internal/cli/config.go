package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fourup/pkg/pipeline"
)

// configFileName is the config file looked up in the config directory.
const configFileName = "config.toml"

// Config holds defaults read from the optional TOML config file at
// ~/.config/fourup/config.toml. Command-line flags win over the file;
// the file wins over the built-in defaults.
//
// Example:
//
//	width = 1200
//	padding = 6
//	border = 2
//	background = "#eeeeee"
//	border_color = "#ffffff"
//	quality = 85
//
//	[cache]
//	backend = "file"   # file, redis, none
//	redis_addr = "localhost:6379"
type Config struct {
	Width       int    `toml:"width"`
	Padding     int    `toml:"padding"`
	Border      int    `toml:"border"`
	Background  string `toml:"background"`
	BorderColor string `toml:"border_color"`
	Quality     int    `toml:"quality"`

	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects the cache backend for remote sources.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file at the default location is not an error
// and yields a zero Config; an explicitly named file must exist.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return Config{}, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// apply copies config values onto options the caller left unset.
func (c Config) apply(opts *pipeline.Options) {
	if opts.TotalWidth == 0 {
		opts.TotalWidth = c.Width
	}
	if opts.Padding == 0 {
		opts.Padding = c.Padding
	}
	if opts.BorderWidth == 0 {
		opts.BorderWidth = c.Border
	}
	if opts.Background == "" {
		opts.Background = c.Background
	}
	if opts.BorderColor == "" {
		opts.BorderColor = c.BorderColor
	}
	if opts.Quality == 0 {
		opts.Quality = c.Quality
	}
}

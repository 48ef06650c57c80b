// Package config loads rp settings from defaults, a TOML file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/pflag"

	termcat "github.com/blacktop/go-termcat"
)

const appName = "rp"

type Config struct {
	MaxWidth   int    `koanf:"max_width"`  // largest image width in pixels
	MaxHeight  int    `koanf:"max_height"` // largest image height in pixels
	Protocol   string `koanf:"protocol"`   // "auto", "kitty" or "sixel"
	Colors     int    `koanf:"colors"`     // sixel palette size, 0 = encoder default
	Background string `koanf:"background"` // sixel background for transparent pixels
	Dither     bool   `koanf:"dither"`
	Sniff      bool   `koanf:"sniff"`
	Label      bool   `koanf:"label"`
	Fit        bool   `koanf:"fit"`
}

// flagKeys maps command-line flag names onto config keys
var flagKeys = map[string]string{
	"max-width":  "max_width",
	"max-height": "max_height",
	"protocol":   "protocol",
	"colors":     "colors",
	"background": "background",
	"dither":     "dither",
	"sniff":      "sniff",
	"label":      "label",
	"fit":        "fit",
}

// Default returns the settings used when neither a file nor a flag sets them.
func Default() *Config {
	return &Config{
		MaxWidth:   termcat.DefaultMaxWidth,
		MaxHeight:  termcat.DefaultMaxHeight,
		Protocol:   termcat.Auto.String(),
		Background: "#000000",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/rp/config.toml
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load layers defaults, the TOML file at path (DefaultPath when empty) and the
// flags the user changed, then validates the result. A missing file is only
// an error when path was given explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting
func (c *Config) Validate() error {
	var errs []error
	if c.MaxWidth <= 0 {
		errs = append(errs, fmt.Errorf("max_width must be positive, got %d", c.MaxWidth))
	}
	if c.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("max_height must be positive, got %d", c.MaxHeight))
	}
	if c.Colors != 0 && (c.Colors < 2 || c.Colors > 256) {
		errs = append(errs, fmt.Errorf("colors must be 0 or between 2 and 256, got %d", c.Colors))
	}
	if _, err := termcat.ParseProtocol(c.Protocol); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.BackgroundColor(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Bounds returns the configured image bounds
func (c *Config) Bounds() termcat.Bounds {
	return termcat.Bounds{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// ProtocolValue parses the configured protocol name
func (c *Config) ProtocolValue() (termcat.Protocol, error) {
	return termcat.ParseProtocol(c.Protocol)
}

// BackgroundColor parses the background as #rgb or #rrggbb
func (c *Config) BackgroundColor() (color.RGBA, error) {
	hex := strings.TrimSpace(c.Background)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid background %q: %w", c.Background, err)
	}
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

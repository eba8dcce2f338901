package sprig

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const defaultScreenshotDir = "screenshots"

// Config holds the host-facing settings of a Gui.
type Config struct {
	Title         string `toml:"title"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	Scale         int    `toml:"scale"`
	Debug         bool   `toml:"debug"`
	ScreenshotDir string `toml:"screenshot_dir"`

	// RebuildOnResize repopulates the Gui when the screen size or UI scale changes.
	RebuildOnResize bool `toml:"rebuild_on_resize"`
}

// DefaultConfig returns a 640×480 window at scale 1 that rebuilds on resize.
func DefaultConfig() Config {
	return Config{
		Title:           "sprig",
		Width:           640,
		Height:          480,
		Scale:           1,
		ScreenshotDir:   defaultScreenshotDir,
		RebuildOnResize: true,
	}
}

// ParseConfig decodes TOML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a TOML config file. A missing file yields DefaultConfig and
// no error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the screen size is positive and the scale is at least 1.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", c.Width, c.Height)
	}
	if c.Scale < 1 {
		return fmt.Errorf("invalid scale %d", c.Scale)
	}
	return nil
}

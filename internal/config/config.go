package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"zonedit/internal/editor"
	"zonedit/internal/zone"
)

// DefaultPath is where the config lives unless --config says otherwise.
const DefaultPath = "~/.config/zonedit/config.toml"

// Config holds runtime settings for the editor and the terminal front end.
// Fields may be loaded from a TOML file and overridden by command-line flags.
type Config struct {
	LogLevel  string `toml:"log_level"`
	ZoneColor string `toml:"zone_color"`

	// Editor geometry, world units
	TextWidth       float64 `toml:"text_width"`
	TextHeight      float64 `toml:"text_height"`
	TextPlaceholder string  `toml:"text_placeholder"`
	HandleSize      float64 `toml:"handle_size"`
	MinSize         float64 `toml:"min_size"`

	// Terminal cell size in device pixels
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`

	DoubleClickMS       int    `toml:"double_click_ms"`
	PolygonOnModeSwitch string `toml:"polygon_on_mode_switch"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	o := editor.DefaultOptions()
	return &Config{
		LogLevel:            "info",
		ZoneColor:           zone.DefaultColor,
		TextWidth:           o.TextWidth,
		TextHeight:          o.TextHeight,
		TextPlaceholder:     o.TextPlaceholder,
		HandleSize:          o.HandleSize,
		MinSize:             o.MinSize,
		CellWidth:           8,
		CellHeight:          16,
		DoubleClickMS:       400,
		PolygonOnModeSwitch: string(o.OnModeSwitch),
	}
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := Default()
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = d.LogLevel
	}
	if !hexColor.MatchString(c.ZoneColor) {
		c.ZoneColor = d.ZoneColor
	}
	if c.TextWidth <= 0 {
		c.TextWidth = d.TextWidth
	}
	if c.TextHeight <= 0 {
		c.TextHeight = d.TextHeight
	}
	if c.TextPlaceholder == "" {
		c.TextPlaceholder = d.TextPlaceholder
	}
	if c.HandleSize <= 0 {
		c.HandleSize = d.HandleSize
	}
	if c.MinSize <= 0 {
		c.MinSize = d.MinSize
	}
	if c.CellWidth <= 0 {
		c.CellWidth = d.CellWidth
	}
	if c.CellHeight <= 0 {
		c.CellHeight = d.CellHeight
	}
	if c.DoubleClickMS <= 0 || c.DoubleClickMS > 2000 {
		c.DoubleClickMS = d.DoubleClickMS
	}
	switch editor.PolygonPolicy(strings.ToLower(c.PolygonOnModeSwitch)) {
	case editor.PolygonCommit, editor.PolygonDiscard:
		c.PolygonOnModeSwitch = strings.ToLower(c.PolygonOnModeSwitch)
	default:
		c.PolygonOnModeSwitch = d.PolygonOnModeSwitch
	}
	return nil
}

// Expand resolves a leading ~ in path.
func Expand(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return p, nil
}

// Load reads configuration from the given TOML file path. A missing file
// yields Default(). On a decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := Default()
	p, err := Expand(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", p, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to path in TOML, creating parent dirs.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	p, err := Expand(path)
	if err != nil {
		return err
	}
	b, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(p, b, 0o644)
}

// EditorOptions maps the geometry settings onto the controller options.
func (c *Config) EditorOptions() editor.Options {
	return editor.Options{
		TextWidth:       c.TextWidth,
		TextHeight:      c.TextHeight,
		TextPlaceholder: c.TextPlaceholder,
		HandleSize:      c.HandleSize,
		MinSize:         c.MinSize,
		OnModeSwitch:    editor.PolygonPolicy(c.PolygonOnModeSwitch),
	}
}

func (c *Config) DoubleClick() time.Duration {
	return time.Duration(c.DoubleClickMS) * time.Millisecond
}

// Level maps LogLevel to a slog level; unknown names mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

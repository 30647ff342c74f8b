// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/techcore/gpu3d/internal/logger"
)

// Config holds all application settings.
type Config struct {
	Window    WindowConfig    `yaml:"window" koanf:"window"`
	Viewer    ViewerConfig    `yaml:"viewer" koanf:"viewer"`
	Controls  ControlsConfig  `yaml:"controls" koanf:"controls"`
	Assets    AssetsConfig    `yaml:"assets" koanf:"assets"`
	Remote    RemoteConfig    `yaml:"remote" koanf:"remote"`
	Logging   LoggingConfig   `yaml:"logging" koanf:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" koanf:"telemetry"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title" koanf:"title"`
	Width      int    `yaml:"width" koanf:"width"`
	Height     int    `yaml:"height" koanf:"height"`
	Fullscreen bool   `yaml:"fullscreen" koanf:"fullscreen"`
	VSync      bool   `yaml:"vsync" koanf:"vsync"`
	HighDPI    bool   `yaml:"high_dpi" koanf:"high_dpi"`
}

// ViewerConfig holds per-instance viewer overrides. A nil field keeps the
// viewer's documented default.
type ViewerConfig struct {
	ModelPath         *string        `yaml:"model_path,omitempty" koanf:"model_path"`
	AlternativePaths  []string       `yaml:"alternative_paths,omitempty" koanf:"alternative_paths"`
	ProbeAlternatives *bool          `yaml:"probe_alternatives,omitempty" koanf:"probe_alternatives"`
	BackgroundColor   *Hex           `yaml:"background_color,omitempty" koanf:"background_color"`
	PrimaryColor      *Hex           `yaml:"primary_color,omitempty" koanf:"primary_color"`
	RotationSpeed     *float64       `yaml:"rotation_speed,omitempty" koanf:"rotation_speed"`
	WobbleSpeed       *float64       `yaml:"wobble_speed,omitempty" koanf:"wobble_speed"`
	WobbleAmplitude   *float64       `yaml:"wobble_amplitude,omitempty" koanf:"wobble_amplitude"`
	Scale             *float64       `yaml:"scale,omitempty" koanf:"scale"`
	CameraDistance    *float64       `yaml:"camera_distance,omitempty" koanf:"camera_distance"`
	FOV               *float64       `yaml:"fov,omitempty" koanf:"fov"`
	Shadows           *bool          `yaml:"shadows,omitempty" koanf:"shadows"`
	MaxPixelRatio     *float64       `yaml:"max_pixel_ratio,omitempty" koanf:"max_pixel_ratio"`
	LoadTimeout       *time.Duration `yaml:"load_timeout,omitempty" koanf:"load_timeout"`
}

// ControlsConfig holds the interactive controller settings.
type ControlsConfig struct {
	StatsInterval time.Duration `yaml:"stats_interval" koanf:"stats_interval"`
	ScreenshotDir string        `yaml:"screenshot_dir" koanf:"screenshot_dir"`
}

// AssetsConfig holds where the model asset is served from.
type AssetsConfig struct {
	// BaseURL is the origin relative model paths resolve against. An empty
	// value or a file:// URL means the viewer runs from the local filesystem.
	BaseURL      string        `yaml:"base_url" koanf:"base_url"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" koanf:"probe_timeout"`
	Cache        bool          `yaml:"cache" koanf:"cache"`
	ServeDir     string        `yaml:"serve_dir" koanf:"serve_dir"`
	ServeAddr    string        `yaml:"serve_addr" koanf:"serve_addr"`
}

// RemoteConfig holds the remote control API settings.
type RemoteConfig struct {
	Enabled         bool          `yaml:"enabled" koanf:"enabled"`
	Addr            string        `yaml:"addr" koanf:"addr"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	StatsInterval   time.Duration `yaml:"stats_interval" koanf:"stats_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" koanf:"level"`
	LogFile    string `yaml:"log_file" koanf:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" koanf:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" koanf:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" koanf:"max_age_days"`
	Compress   bool   `yaml:"compress" koanf:"compress"`
}

// FileConfig converts the logging section into logger file settings.
func (l LoggingConfig) FileConfig() logger.FileConfig {
	if l.LogFile == "" {
		return logger.FileConfig{}
	}
	return logger.FileConfig{
		Path:       l.LogFile,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// TelemetryConfig holds crash reporting settings.
type TelemetryConfig struct {
	SentryDSN   string `yaml:"sentry_dsn" koanf:"sentry_dsn"`
	Environment string `yaml:"environment" koanf:"environment"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	file := logger.DefaultFileConfig("")
	return &Config{
		Window: WindowConfig{
			Title:      "TechCore GPU 3D",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			HighDPI:    true,
		},
		Controls: ControlsConfig{
			StatsInterval: time.Second,
			ScreenshotDir: "screenshots",
		},
		Assets: AssetsConfig{
			BaseURL:      "http://127.0.0.1:8080/",
			ProbeTimeout: 3 * time.Second,
			Cache:        true,
			ServeDir:     ".",
			ServeAddr:    "127.0.0.1:8080",
		},
		Remote: RemoteConfig{
			Enabled:       false,
			Addr:          "127.0.0.1:7777",
			StatsInterval: time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAgeDays: file.MaxAgeDays,
			Compress:   file.Compress,
		},
		Telemetry: TelemetryConfig{
			Environment: "development",
		},
	}
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging level %q: must be one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Assets.BaseURL != "" {
		if _, err := url.Parse(c.Assets.BaseURL); err != nil {
			return fmt.Errorf("invalid assets.base_url: %w", err)
		}
	}
	if c.Controls.StatsInterval <= 0 {
		return fmt.Errorf("controls.stats_interval must be positive")
	}
	if c.Remote.Enabled && c.Remote.Addr == "" {
		return fmt.Errorf("remote.addr is required when remote is enabled")
	}

	v := c.Viewer
	if v.FOV != nil && (*v.FOV <= 0 || *v.FOV >= 180) {
		return fmt.Errorf("viewer.fov must be between 0 and 180, got %v", *v.FOV)
	}
	if v.Scale != nil && *v.Scale <= 0 {
		return fmt.Errorf("viewer.scale must be positive, got %v", *v.Scale)
	}
	if v.CameraDistance != nil && *v.CameraDistance <= 0 {
		return fmt.Errorf("viewer.camera_distance must be positive, got %v", *v.CameraDistance)
	}
	if v.MaxPixelRatio != nil && *v.MaxPixelRatio <= 0 {
		return fmt.Errorf("viewer.max_pixel_ratio must be positive, got %v", *v.MaxPixelRatio)
	}
	if v.LoadTimeout != nil && *v.LoadTimeout < 0 {
		return fmt.Errorf("viewer.load_timeout must not be negative")
	}
	return nil
}

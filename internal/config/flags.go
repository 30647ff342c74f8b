package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Debug      bool
	BaseURL    string
	ModelPath  string
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	Remote     string
	NoShadows  bool
}

// Register binds the flags onto fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.BaseURL, "base-url", "", "Origin the model path resolves against (file:// for local mode)")
	fs.StringVar(&f.ModelPath, "model", "", "Model asset path")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.StringVar(&f.Remote, "remote", "", "Enable the remote control API on this address")
	fs.BoolVar(&f.NoShadows, "no-shadows", false, "Disable shadow mapping")
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.BaseURL != "" {
		cfg.Assets.BaseURL = f.BaseURL
	}
	if f.ModelPath != "" {
		path := f.ModelPath
		cfg.Viewer.ModelPath = &path
	}
	if f.Windowed {
		cfg.Window.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.Remote != "" {
		cfg.Remote.Enabled = true
		cfg.Remote.Addr = f.Remote
	}
	if f.NoShadows {
		off := false
		cfg.Viewer.Shadows = &off
	}
}

package viewer

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/techcore/gpu3d/internal/config"
)

// Documented defaults.
const (
	DefaultModelPath       = "3d/gpu8800gt.glb"
	DefaultBackgroundColor = 0x0a0a0a
	DefaultPrimaryColor    = 0x00ff41
	DefaultRotationSpeed   = 0.01
	DefaultWobbleSpeed     = 0.001
	DefaultWobbleAmplitude = 0.08
	DefaultScale           = 5
	DefaultCameraDistance  = 3.5
	DefaultFOV             = 60
	DefaultMaxPixelRatio   = 2
	DefaultLoadTimeout     = 30 * time.Second

	// MaxRotationSpeed bounds SetRotationSpeed, in radians per frame.
	MaxRotationSpeed = 0.1
)

// Scene constants.
const (
	FogNear      = 2
	FogFar       = 10
	CameraNear   = 0.1
	CameraFar    = 100
	CameraHeight = 0.2

	ResizeDebounce = 100 * time.Millisecond
	FPSWindow      = time.Second
	LowFPS         = 30
)

// DefaultAlternativePaths returns the fallback locations probed after ModelPath.
func DefaultAlternativePaths() []string {
	return []string{
		"./3d/gpu8800gt.glb",
		"../3d/gpu8800gt.glb",
		"/3d/gpu8800gt.glb",
	}
}

// Config is the resolved, immutable configuration of one viewer.
type Config struct {
	ModelPath         string
	AlternativePaths  []string
	ProbeAlternatives bool

	BackgroundColor uint32
	PrimaryColor    uint32

	RotationSpeed   float64 // radians per frame
	WobbleSpeed     float64 // radians per millisecond
	WobbleAmplitude float64

	Scale          float64
	CameraDistance float64
	FOV            float64 // degrees

	Shadows       bool
	MaxPixelRatio float64
	LoadTimeout   time.Duration // 0 disables the timeout
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ModelPath:         DefaultModelPath,
		AlternativePaths:  DefaultAlternativePaths(),
		ProbeAlternatives: true,
		BackgroundColor:   DefaultBackgroundColor,
		PrimaryColor:      DefaultPrimaryColor,
		RotationSpeed:     DefaultRotationSpeed,
		WobbleSpeed:       DefaultWobbleSpeed,
		WobbleAmplitude:   DefaultWobbleAmplitude,
		Scale:             DefaultScale,
		CameraDistance:    DefaultCameraDistance,
		FOV:               DefaultFOV,
		Shadows:           true,
		MaxPixelRatio:     DefaultMaxPixelRatio,
		LoadTimeout:       DefaultLoadTimeout,
	}
}

// Overrides replaces individual defaults. A nil field keeps the default.
type Overrides struct {
	ModelPath         *string
	AlternativePaths  []string // nil keeps the defaults, empty disables them
	ProbeAlternatives *bool

	BackgroundColor *uint32
	PrimaryColor    *uint32

	RotationSpeed   *float64
	WobbleSpeed     *float64
	WobbleAmplitude *float64

	Scale          *float64
	CameraDistance *float64
	FOV            *float64

	Shadows       *bool
	MaxPixelRatio *float64
	LoadTimeout   *time.Duration
}

// Resolve merges o over DefaultConfig. Values that would break the scene
// (non-positive scale, distance, field of view or pixel ratio) are ignored
// and the rotation speed is clamped like SetRotationSpeed does.
func (o Overrides) Resolve() Config {
	c := DefaultConfig()
	set(&c.ModelPath, o.ModelPath)
	if o.AlternativePaths != nil {
		c.AlternativePaths = slices.Clone(o.AlternativePaths)
	}
	set(&c.ProbeAlternatives, o.ProbeAlternatives)
	set(&c.BackgroundColor, o.BackgroundColor)
	set(&c.PrimaryColor, o.PrimaryColor)
	set(&c.RotationSpeed, o.RotationSpeed)
	set(&c.WobbleSpeed, o.WobbleSpeed)
	set(&c.WobbleAmplitude, o.WobbleAmplitude)
	setPositive(&c.Scale, o.Scale)
	setPositive(&c.CameraDistance, o.CameraDistance)
	if o.FOV != nil && *o.FOV > 0 && *o.FOV < 180 {
		c.FOV = *o.FOV
	}
	set(&c.Shadows, o.Shadows)
	setPositive(&c.MaxPixelRatio, o.MaxPixelRatio)
	if o.LoadTimeout != nil && *o.LoadTimeout >= 0 {
		c.LoadTimeout = *o.LoadTimeout
	}
	c.RotationSpeed = ClampRotationSpeed(c.RotationSpeed)
	return c
}

// OverridesFromConfig maps the viewer section of the application config.
func OverridesFromConfig(vc config.ViewerConfig) Overrides {
	toColor := func(h *config.Hex) *uint32 {
		if h == nil {
			return nil
		}
		return lo.ToPtr(uint32(*h))
	}
	return Overrides{
		ModelPath:         vc.ModelPath,
		AlternativePaths:  vc.AlternativePaths,
		ProbeAlternatives: vc.ProbeAlternatives,
		BackgroundColor:   toColor(vc.BackgroundColor),
		PrimaryColor:      toColor(vc.PrimaryColor),
		RotationSpeed:     vc.RotationSpeed,
		WobbleSpeed:       vc.WobbleSpeed,
		WobbleAmplitude:   vc.WobbleAmplitude,
		Scale:             vc.Scale,
		CameraDistance:    vc.CameraDistance,
		FOV:               vc.FOV,
		Shadows:           vc.Shadows,
		MaxPixelRatio:     vc.MaxPixelRatio,
		LoadTimeout:       vc.LoadTimeout,
	}
}

// ClampRotationSpeed limits v to [0, MaxRotationSpeed]. NaN maps to 0.
func ClampRotationSpeed(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return lo.Clamp(v, 0, MaxRotationSpeed)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setPositive(dst *float64, src *float64) {
	if src != nil && *src > 0 {
		*dst = *src
	}
}

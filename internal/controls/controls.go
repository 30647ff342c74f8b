// Package controls drives a viewer from user actions and publishes its
// frame rate.
package controls

import (
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/loop"
	"github.com/techcore/gpu3d/internal/viewer"
)

// Slider range and the speed its maximum maps to.
const (
	SliderMin   = 0
	SliderMax   = 100
	SliderStep  = 10
	SliderSpeed = viewer.MaxRotationSpeed
)

// Target is the viewer surface the controller acts on.
type Target interface {
	OnReady(fn func())
	OnFailed(fn func(error))

	ToggleAutoRotate() bool
	ToggleWobble() bool
	ToggleShadows() bool
	Pause()
	Resume()
	Running() bool
	ResetView()
	SetRotationSpeed(speed float64) float64
	RotationSpeed() float64
	Reload() bool
	Stats() viewer.Stats
	Screenshot() ([]byte, int, int, error)
}

// Tier grades a frame rate.
type Tier int

const (
	TierLow Tier = iota
	TierFair
	TierGood
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierFair:
		return "fair"
	default:
		return "good"
	}
}

// TierFor grades fps: below 30 is low, below 50 fair.
func TierFor(fps int) Tier {
	switch {
	case fps < 30:
		return TierLow
	case fps < 50:
		return TierFair
	default:
		return TierGood
	}
}

// Display shows controller output to the user.
type Display interface {
	ShowStats(text string, tier Tier)
	ShowStatus(text string)
}

// Saver writes screenshots.
type Saver interface {
	CaptureFromPixels(pixels []byte, width, height int) (string, error)
}

// Options configures a Controller.
type Options struct {
	StatsInterval time.Duration // defaults to one second
	Saver         Saver
	// Reload is called for ActionReload while the viewer is in basic mode,
	// where the viewer itself cannot retry.
	Reload func()
	Logger *zap.Logger
}

// Controller binds actions to one viewer.
type Controller struct {
	target  Target
	sched   *loop.Loop
	display Display
	opts    Options
	log     *zap.Logger

	active bool
	basic  bool
	failed error
	slider int
	stats  *loop.Timer
}

// New creates a controller for target. Actions become available once the
// target announces it is ready; a failed target leaves only reload.
func New(target Target, sched *loop.Loop, display Display, opts Options) *Controller {
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Controller{
		target:  target,
		sched:   sched,
		display: display,
		opts:    opts,
		log:     opts.Logger,
	}
	target.OnReady(c.activate)
	target.OnFailed(c.enterBasic)
	return c
}

func (c *Controller) activate() {
	if c.active || c.basic {
		return
	}
	c.active = true
	c.slider = SliderFor(c.target.RotationSpeed())
	c.stats = c.sched.Every(c.opts.StatsInterval, c.publishStats)
	c.log.Info("controls ready")
}

func (c *Controller) enterBasic(err error) {
	if c.basic {
		return
	}
	c.basic = true
	c.active = false
	c.failed = err
	c.stats.Stop()
	c.stats = nil
	c.status("Fallback model active: %v", err)
	c.log.Warn("controls in basic mode", zap.Error(err))
}

// Active reports whether the full set of actions is bound.
func (c *Controller) Active() bool { return c.active }

// Basic reports whether only reload is available.
func (c *Controller) Basic() bool { return c.basic }

// Slider returns the speed slider position.
func (c *Controller) Slider() int { return c.slider }

// Do performs a and reports whether it was handled.
func (c *Controller) Do(a Action) bool {
	if c.basic {
		if a != ActionReload {
			return false
		}
		if c.opts.Reload != nil {
			c.opts.Reload()
		}
		return true
	}
	if !c.active {
		return false
	}

	switch a {
	case ActionToggleRotation:
		c.status("Rotation %s", onOff(c.target.ToggleAutoRotate()))
	case ActionToggleWobble:
		c.status("Wobble %s", onOff(c.target.ToggleWobble()))
	case ActionToggleShadows:
		c.status("Shadows %s", onOff(c.target.ToggleShadows()))
	case ActionPauseResume:
		c.PauseResume()
	case ActionResetView:
		c.ResetView()
	case ActionSpeedUp:
		c.SetSlider(c.slider + SliderStep)
	case ActionSpeedDown:
		c.SetSlider(c.slider - SliderStep)
	case ActionReload:
		if c.target.Reload() {
			c.status("Reloading model")
		}
	case ActionScreenshot:
		c.Screenshot()
	default:
		if d, ok := a.Preset(); ok {
			c.SetSlider(d * SliderStep)
			return true
		}
		return false
	}
	return true
}

// PauseResume toggles the render loop.
func (c *Controller) PauseResume() {
	if c.target.Running() {
		c.target.Pause()
		c.status("Paused")
		return
	}
	c.target.Resume()
	c.status("Running")
}

// ResetView restores the initial view and the slider.
func (c *Controller) ResetView() {
	c.target.ResetView()
	c.slider = SliderFor(c.target.RotationSpeed())
	c.status("View reset")
}

// SetSlider moves the slider to value, clamped to its range, and applies
// value/100 * 0.1 as the rotation speed.
func (c *Controller) SetSlider(value int) {
	c.slider = lo.Clamp(value, SliderMin, SliderMax)
	c.target.SetRotationSpeed(float64(c.slider) / SliderMax * SliderSpeed)
	c.status("Speed %d%%", c.slider)
}

// SetSpeed sets a normalized speed: s is clamped to [0, 1] and stored as
// s * 0.1.
func (c *Controller) SetSpeed(s float64) {
	if math.IsNaN(s) {
		s = 0
	}
	s = lo.Clamp(s, 0, 1)
	c.target.SetRotationSpeed(s * SliderSpeed)
	c.slider = int(math.Round(s * SliderMax))
}

// Screenshot saves the current frame.
func (c *Controller) Screenshot() {
	if c.opts.Saver == nil {
		return
	}
	px, w, h, err := c.target.Screenshot()
	if err == nil {
		var path string
		if path, err = c.opts.Saver.CaptureFromPixels(px, w, h); err == nil {
			c.status("Saved %s", path)
			c.log.Info("screenshot saved", zap.String("path", path))
			return
		}
	}
	c.log.Error("screenshot failed", zap.Error(err))
	c.status("Screenshot failed: %v", err)
}

// Stop ends stats polling.
func (c *Controller) Stop() {
	c.stats.Stop()
	c.stats = nil
}

func (c *Controller) publishStats() {
	if c.display == nil {
		return
	}
	fps := c.target.Stats().FPS
	c.display.ShowStats(fmt.Sprintf("FPS: %d", fps), TierFor(fps))
}

func (c *Controller) status(format string, args ...any) {
	if c.display != nil {
		c.display.ShowStatus(fmt.Sprintf(format, args...))
	}
}

// SliderFor returns the slider position showing speed.
func SliderFor(speed float64) int {
	return lo.Clamp(int(math.Round(speed/SliderSpeed*SliderMax)), SliderMin, SliderMax)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/techcore/gpu3d/internal/controls"
	"github.com/techcore/gpu3d/internal/engine/input"
	"github.com/techcore/gpu3d/internal/engine/ui2d"
	"github.com/techcore/gpu3d/internal/viewer"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		key  sdl.Scancode
		want controls.Action
	}{
		{sdl.SCANCODE_R, controls.ActionToggleRotation},
		{sdl.SCANCODE_W, controls.ActionToggleWobble},
		{sdl.SCANCODE_S, controls.ActionToggleShadows},
		{sdl.SCANCODE_SPACE, controls.ActionPauseResume},
		{sdl.SCANCODE_H, controls.ActionResetView},
		{sdl.SCANCODE_EQUALS, controls.ActionSpeedUp},
		{sdl.SCANCODE_KP_MINUS, controls.ActionSpeedDown},
		{sdl.SCANCODE_L, controls.ActionReload},
		{sdl.SCANCODE_F12, controls.ActionScreenshot},
		{sdl.SCANCODE_1, controls.PresetAction(1)},
		{sdl.SCANCODE_9, controls.PresetAction(9)},
		{sdl.SCANCODE_0, controls.PresetAction(0)},
		{sdl.SCANCODE_ESCAPE, controls.ActionNone},
		{sdl.SCANCODE_Q, controls.ActionNone},
	}
	for _, tt := range tests {
		if got := ActionFor(tt.key); got != tt.want {
			t.Errorf("ActionFor(%d) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestHUDTitle(t *testing.T) {
	var titles []string
	h := newHUD("GPU", func(s string) { titles = append(titles, s) })

	h.ShowLoading()
	h.UpdateLoading(42.4)
	if got := titles[len(titles)-1]; got != "GPU | Loading GPU model... 42%" {
		t.Errorf("loading title = %q", got)
	}

	h.HideLoading()
	h.ShowStats("FPS: 12", controls.TierLow)
	h.ShowStatus("Paused")
	if got := titles[len(titles)-1]; got != "GPU | FPS: 12 (low) | Paused" {
		t.Errorf("title = %q", got)
	}

	n := len(titles)
	h.ShowStatus("Paused")
	if len(titles) != n {
		t.Error("unchanged title was set again")
	}
}

func TestHUDQueuesOnlySetupErrors(t *testing.T) {
	h := newHUD("GPU", nil)

	h.ShowError(&viewer.LoadError{Path: "m.glb", Err: errors.New("404")})
	if h.takeError() != nil {
		t.Error("load error queued for a dialog")
	}
	if !strings.HasPrefix(h.text(), "GPU | Error: ") {
		t.Errorf("load error not in title: %q", h.text())
	}

	setup := &viewer.SetupError{Capability: "renderer", Err: errors.New("no gl")}
	h.ShowError(setup)
	if err := h.takeError(); err != setup {
		t.Errorf("takeError() = %v", err)
	}
	if h.takeError() != nil {
		t.Error("error returned twice")
	}
}

func TestWindowEvents(t *testing.T) {
	e := newWindowEvents()
	resized := 0
	var seen []bool

	removeResize := e.OnResize(func() { resized++ })
	e.OnVisibility(func(v bool) { seen = append(seen, v) })

	e.fireResize()
	e.fireVisibility(false)
	e.fireVisibility(true)
	removeResize()
	e.fireResize()

	if resized != 1 {
		t.Errorf("resize listener ran %d times", resized)
	}
	if len(seen) != 2 || seen[0] || !seen[1] {
		t.Errorf("visibility = %v", seen)
	}
}

func TestHUDTracksChangesAndDismissal(t *testing.T) {
	h := newHUD("GPU", nil)
	if h.takeChanged() {
		t.Error("new hud reports a change")
	}

	h.ShowError(&viewer.LoadError{Err: errors.New("404")})
	if !h.takeChanged() || h.err == nil {
		t.Fatal("error not recorded")
	}
	if h.takeChanged() {
		t.Error("change reported twice")
	}

	h.dismissError()
	if h.err != nil || !h.takeChanged() {
		t.Error("dismissal not recorded")
	}
	if !strings.Contains(h.text(), "Error: ") {
		t.Error("dismissal cleared the title status")
	}
}

// canvas records what the panel draws. Glyphs are 7x13.
type canvas struct {
	texts []string
}

func (c *canvas) Begin()                                    { c.texts = nil }
func (c *canvas) End()                                      {}
func (c *canvas) Size() (int, int)                          { return 800, 600 }
func (c *canvas) DrawRect(_, _, _, _ float32, _ ui2d.Color) {}
func (c *canvas) DrawText(_, _ float32, text string, _ float32, _ ui2d.Color) {
	c.texts = append(c.texts, text)
}
func (c *canvas) MeasureText(text string, scale float32) (float32, float32) {
	return float32(len(text)*7) * scale, 13 * scale
}

func (c *canvas) drew(text string) bool {
	for _, t := range c.texts {
		if t == text {
			return true
		}
	}
	return false
}

type fakeControls struct {
	basic   bool
	active  bool
	slider  int
	actions []controls.Action
}

func (f *fakeControls) Do(a controls.Action) bool { f.actions = append(f.actions, a); return true }
func (f *fakeControls) SetSlider(v int)           { f.slider = v }
func (f *fakeControls) Slider() int               { return f.slider }
func (f *fakeControls) Basic() bool               { return f.basic }
func (f *fakeControls) Active() bool              { return f.active }

// click presses and releases the left button at x, y, drawing a frame
// after each.
func click(p *panel, ctl controlSurface, st viewer.Stats, x, y int) {
	p.handle(input.Event{Type: input.EventMouseButton, Button: sdl.BUTTON_LEFT, Pressed: true, X: x, Y: y})
	p.draw(ctl, st)
	p.handle(input.Event{Type: input.EventMouseButton, Button: sdl.BUTTON_LEFT, X: x, Y: y})
	p.draw(ctl, st)
}

func runningStats() viewer.Stats {
	return viewer.Stats{Running: true, Controls: viewer.Controls{AutoRotate: true, Wobble: true}}
}

// The controls window sits at the top right of the 800x600 canvas: content
// starts at x 556, rows at y 40, 66, 92 and 118.
func TestPanelControls(t *testing.T) {
	c := &canvas{}
	h := newHUD("GPU", nil)
	p := newPanel(c, h)
	ctl := &fakeControls{active: true, slider: 20}

	h.ShowStats("FPS: 58", controls.TierGood)
	p.draw(ctl, runningStats())
	for _, want := range []string{"3D Controls", "Rotation", "Wobble", "Pause", "Reset", "Speed", "Shadows", "FPS: 58"} {
		if !c.drew(want) {
			t.Errorf("missing %q in %v", want, c.texts)
		}
	}

	click(p, ctl, runningStats(), 560, 70)
	if len(ctl.actions) != 1 || ctl.actions[0] != controls.ActionPauseResume {
		t.Fatalf("pause click produced %v", ctl.actions)
	}

	// The slider track spans x 595..771.
	click(p, ctl, runningStats(), 683, 100)
	if ctl.slider != 50 {
		t.Errorf("slider = %d, want 50", ctl.slider)
	}

	click(p, ctl, runningStats(), 560, 125)
	if got := ctl.actions[len(ctl.actions)-1]; got != controls.ActionToggleShadows {
		t.Errorf("shadows click produced %v", got)
	}

	paused := runningStats()
	paused.Running = false
	p.draw(ctl, paused)
	if !c.drew("Resume") {
		t.Error("paused viewer does not offer resume")
	}
}

func TestPanelBasicMode(t *testing.T) {
	c := &canvas{}
	p := newPanel(c, newHUD("GPU", nil))
	ctl := &fakeControls{basic: true}

	p.draw(ctl, viewer.Stats{})
	for _, want := range []string{"Reload", "Lights", "Fallback model active"} {
		if !c.drew(want) {
			t.Errorf("missing %q in %v", want, c.texts)
		}
	}
	if c.drew("Pause") {
		t.Error("basic mode shows full controls")
	}

	// Lights is inert.
	click(p, ctl, viewer.Stats{}, 700, 45)
	if len(ctl.actions) != 0 {
		t.Errorf("disabled button produced %v", ctl.actions)
	}
	click(p, ctl, viewer.Stats{}, 560, 45)
	if len(ctl.actions) != 1 || ctl.actions[0] != controls.ActionReload {
		t.Errorf("reload click produced %v", ctl.actions)
	}
}

// The error box is centered at the bottom: buttons on the row at y 558,
// Reload at x 198..398 and Dismiss at 402..602.
func TestPanelErrorBox(t *testing.T) {
	c := &canvas{}
	h := newHUD("GPU", nil)
	p := newPanel(c, h)
	ctl := &fakeControls{active: true}

	h.ShowError(&viewer.LoadError{Path: "gpu.glb", Err: errors.New("404")})
	p.draw(ctl, runningStats())
	if !c.drew("Failed to load the 3D model.") {
		t.Errorf("missing headline in %v", c.texts)
	}

	click(p, ctl, runningStats(), 410, 565)
	if h.err != nil || len(ctl.actions) != 0 {
		t.Fatalf("dismiss: err %v actions %v", h.err, ctl.actions)
	}
	p.draw(ctl, runningStats())
	if c.drew("Dismiss") {
		t.Error("dismissed error still drawn")
	}

	h.ShowError(&viewer.SetupError{Capability: "renderer", Err: errors.New("no gl")})
	p.draw(ctl, runningStats())
	if !c.drew("Failed to initialize 3D viewer.") {
		t.Errorf("missing setup headline in %v", c.texts)
	}
	click(p, ctl, runningStats(), 210, 565)
	if h.err != nil || len(ctl.actions) != 1 || ctl.actions[0] != controls.ActionReload {
		t.Errorf("reload: err %v actions %v", h.err, ctl.actions)
	}
}

func TestPanelLoading(t *testing.T) {
	c := &canvas{}
	h := newHUD("GPU", nil)
	p := newPanel(c, h)

	h.ShowLoading()
	h.UpdateLoading(42.4)
	p.draw(&fakeControls{}, viewer.Stats{})
	if !c.drew("Loading GPU model...") || !c.drew("42%") {
		t.Errorf("loading window missing: %v", c.texts)
	}

	h.HideLoading()
	p.draw(&fakeControls{}, viewer.Stats{})
	if c.drew("42%") {
		t.Error("loading window drawn after hide")
	}
}

func TestPanelHandle(t *testing.T) {
	p := newPanel(&canvas{}, newHUD("GPU", nil))
	tests := []struct {
		ev   input.Event
		want bool
	}{
		{input.Event{Type: input.EventMouseMove, X: 1, Y: 2}, true},
		{input.Event{Type: input.EventMouseButton, Button: sdl.BUTTON_LEFT, Pressed: true}, true},
		{input.Event{Type: input.EventMouseButton, Button: sdl.BUTTON_RIGHT, Pressed: true}, false},
		{input.Event{Type: input.EventKeyDown, Key: sdl.SCANCODE_R}, false},
	}
	for _, tt := range tests {
		if got := p.handle(tt.ev); got != tt.want {
			t.Errorf("handle(%+v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

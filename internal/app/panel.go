package app

import (
	"errors"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/techcore/gpu3d/internal/controls"
	"github.com/techcore/gpu3d/internal/engine/input"
	"github.com/techcore/gpu3d/internal/engine/ui2d"
	"github.com/techcore/gpu3d/internal/viewer"
)

// controlSurface is the part of the controller the panel drives.
type controlSurface interface {
	Do(a controls.Action) bool
	SetSlider(value int)
	Slider() int
	Basic() bool
	Active() bool
}

const (
	controlsWidth = 240
	loadingWidth  = 280
	errorWidth    = 420
	margin        = 12
	rowH          = 22
)

// panel draws the loading bar, the controls and the error box inside the
// window, on top of the scene.
type panel struct {
	ui  *ui2d.Context
	hud *hud
}

func newPanel(canvas ui2d.Canvas, h *hud) *panel {
	return &panel{ui: ui2d.NewContext(canvas), hud: h}
}

// handle feeds mouse events to the widgets and reports whether the panel
// needs redrawing.
func (p *panel) handle(ev input.Event) bool {
	in := p.ui.Input()
	switch ev.Type {
	case input.EventMouseMove:
		in.MoveTo(float32(ev.X), float32(ev.Y))
		return true
	case input.EventMouseButton:
		if ev.Button != sdl.BUTTON_LEFT {
			return false
		}
		in.MoveTo(float32(ev.X), float32(ev.Y))
		in.SetLeft(ev.Pressed)
		return true
	}
	return false
}

// draw lays the panel out for one frame and applies whatever was clicked.
func (p *panel) draw(ctl controlSurface, st viewer.Stats) {
	p.ui.Begin()
	w, h := p.ui.ScreenSize()

	if p.hud.loading {
		p.loading(w, h)
	}
	switch {
	case ctl.Basic():
		p.basicControls(w, ctl)
	case ctl.Active():
		p.controls(w, ctl, st)
	}
	if p.hud.err != nil {
		p.errorBox(w, h, ctl)
	}

	p.ui.End()
}

func (p *panel) loading(w, h float32) {
	height := ui2d.WindowHeight(rowH, rowH)
	p.ui.BeginWindow("loading", (w-loadingWidth)/2, (h-height)/2, loadingWidth, height, "GPU model")
	p.ui.Row(rowH)
	p.ui.Label("Loading GPU model...")
	p.ui.Row(rowH)
	p.ui.ProgressBar(float32(p.hud.percent/100), 0, 0, fmt.Sprintf("%.0f%%", p.hud.percent))
	p.ui.EndWindow()
}

func (p *panel) controls(w float32, ctl controlSurface, st viewer.Stats) {
	rows := []float32{rowH, rowH, rowH, rowH, rowH}
	if p.hud.status != "" {
		rows = append(rows, rowH)
	}
	p.ui.BeginWindow("controls", w-controlsWidth-margin, margin, controlsWidth, ui2d.WindowHeight(rows...), "3D Controls")
	half := (p.ui.ContentWidth() - 4) / 2

	p.ui.Row(rowH)
	if p.ui.Toggle("rotate", half, "Rotation", st.Controls.AutoRotate) {
		ctl.Do(controls.ActionToggleRotation)
	}
	if p.ui.Toggle("wobble", half, "Wobble", st.Controls.Wobble) {
		ctl.Do(controls.ActionToggleWobble)
	}

	p.ui.Row(rowH)
	pause := "Pause"
	if !st.Running {
		pause = "Resume"
	}
	if p.ui.Button("pause", half, pause) {
		ctl.Do(controls.ActionPauseResume)
	}
	if p.ui.Button("reset", half, "Reset") {
		ctl.Do(controls.ActionResetView)
	}

	p.ui.Row(rowH)
	p.ui.Label("Speed")
	if v, changed := p.ui.Slider("speed", p.ui.ContentWidth()-48, ctl.Slider(), controls.SliderMin, controls.SliderMax); changed {
		ctl.SetSlider(v)
	}

	p.ui.Row(rowH)
	if p.ui.Checkbox("Shadows", st.Controls.Shadows) != st.Controls.Shadows {
		ctl.Do(controls.ActionToggleShadows)
	}

	p.ui.Row(rowH)
	stats := p.hud.stats
	if stats == "" {
		stats = "FPS: --"
	}
	p.ui.LabelColored(stats, tierColor(p.hud.tier, p.hud.stats != ""))

	if p.hud.status != "" {
		p.ui.Row(rowH)
		p.ui.LabelColored(p.hud.status, ui2d.ColorTextDim)
	}
	p.ui.EndWindow()
}

// basicControls is what is left when the viewer could not be set up: a
// reload button and the inert lights toggle.
func (p *panel) basicControls(w float32, ctl controlSurface) {
	p.ui.BeginWindow("controls", w-controlsWidth-margin, margin, controlsWidth, ui2d.WindowHeight(rowH, rowH), "3D Controls")
	half := (p.ui.ContentWidth() - 4) / 2

	p.ui.Row(rowH)
	if p.ui.Button("reload", half, "Reload") {
		ctl.Do(controls.ActionReload)
	}
	p.ui.ButtonDisabled("lights", half, "Lights")

	p.ui.Row(rowH)
	p.ui.LabelColored("Fallback model active", ui2d.ColorWarning)
	p.ui.EndWindow()
}

func (p *panel) errorBox(w, h float32, ctl controlSurface) {
	height := ui2d.WindowHeight(rowH, rowH, rowH)
	p.ui.BeginWindow("error", (w-errorWidth)/2, h-height-margin, errorWidth, height, "Error")

	headline := "Failed to load the 3D model."
	var se *viewer.SetupError
	if errors.As(p.hud.err, &se) {
		headline = "Failed to initialize 3D viewer."
	}
	p.ui.Row(rowH)
	p.ui.LabelColored(headline, ui2d.ColorError)
	p.ui.Row(rowH)
	p.ui.LabelColored(p.hud.err.Error(), ui2d.ColorTextDim)

	p.ui.Row(rowH)
	half := (p.ui.ContentWidth() - 4) / 2
	if p.ui.Button("reload", half, "Reload") {
		p.hud.dismissError()
		ctl.Do(controls.ActionReload)
	}
	if p.ui.Button("dismiss", half, "Dismiss") {
		p.hud.dismissError()
	}
	p.ui.EndWindow()
}

func tierColor(t controls.Tier, known bool) ui2d.Color {
	if !known {
		return ui2d.ColorTextDim
	}
	switch t {
	case controls.TierLow:
		return ui2d.ColorError
	case controls.TierFair:
		return ui2d.ColorWarning
	default:
		return ui2d.ColorHighlight
	}
}

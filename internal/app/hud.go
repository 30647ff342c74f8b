package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/techcore/gpu3d/internal/controls"
	"github.com/techcore/gpu3d/internal/viewer"
)

// hud keeps what the viewer and the controller want shown. It mirrors it
// into the window title, feeds the in-window panel and queues setup errors
// for a message box when there is no panel.
type hud struct {
	title   string
	setText func(string)

	loading  bool
	percent  float64
	stats    string
	tier     controls.Tier
	status   string
	err      error
	lastText string
	changed  bool

	pending error
}

func newHUD(title string, setText func(string)) *hud {
	return &hud{title: title, setText: setText}
}

func (h *hud) ShowLoading() {
	h.loading = true
	h.percent = 0
	h.refresh()
}

func (h *hud) UpdateLoading(percent float64) {
	h.percent = percent
	h.refresh()
}

func (h *hud) HideLoading() {
	h.loading = false
	h.refresh()
}

// ShowError queues setup failures for a message box. Load errors only reach
// the title.
func (h *hud) ShowError(err error) {
	var se *viewer.SetupError
	if errors.As(err, &se) {
		h.pending = err
	}
	h.err = err
	h.status = "Error: " + err.Error()
	h.refresh()
}

// dismissError hides the error panel. The title keeps the status.
func (h *hud) dismissError() {
	h.err = nil
	h.changed = true
}

func (h *hud) ShowStats(text string, tier controls.Tier) {
	h.stats = text
	h.tier = tier
	h.refresh()
}

func (h *hud) ShowStatus(text string) {
	h.status = text
	h.refresh()
}

// takeChanged reports whether anything shown changed since the last call.
func (h *hud) takeChanged() bool {
	c := h.changed
	h.changed = false
	return c
}

// takeError returns and clears the queued setup error.
func (h *hud) takeError() error {
	err := h.pending
	h.pending = nil
	return err
}

func (h *hud) reset() {
	h.loading = false
	h.stats = ""
	h.status = ""
	h.err = nil
	h.pending = nil
	h.refresh()
}

func (h *hud) text() string {
	parts := []string{h.title}
	if h.stats != "" {
		s := h.stats
		if h.tier == controls.TierLow {
			s += " (low)"
		}
		parts = append(parts, s)
	}
	if h.loading {
		parts = append(parts, fmt.Sprintf("Loading GPU model... %.0f%%", h.percent))
	}
	if h.status != "" {
		parts = append(parts, h.status)
	}
	return strings.Join(parts, " | ")
}

func (h *hud) refresh() {
	h.changed = true
	t := h.text()
	if t == h.lastText || h.setText == nil {
		return
	}
	h.lastText = t
	h.setText(t)
}

// windowEvents fans resize and visibility changes out to listeners.
type windowEvents struct {
	next       int
	resize     map[int]func()
	visibility map[int]func(bool)
}

func newWindowEvents() *windowEvents {
	return &windowEvents{resize: map[int]func(){}, visibility: map[int]func(bool){}}
}

func (e *windowEvents) OnResize(fn func()) func() {
	id := e.next
	e.next++
	e.resize[id] = fn
	return func() { delete(e.resize, id) }
}

func (e *windowEvents) OnVisibility(fn func(bool)) func() {
	id := e.next
	e.next++
	e.visibility[id] = fn
	return func() { delete(e.visibility, id) }
}

func (e *windowEvents) fireResize() {
	for _, fn := range e.resize {
		fn()
	}
}

func (e *windowEvents) fireVisibility(visible bool) {
	for _, fn := range e.visibility {
		fn(visible)
	}
}

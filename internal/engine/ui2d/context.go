package ui2d

import "math"

// Layout metrics shared by the widgets.
const (
	TextScale   float32 = 1
	titleBarH   float32 = 20
	padding     float32 = 8
	spacing     float32 = 4
	defaultRowH float32 = 22
	boxSize     float32 = 14
)

// Context lays widgets out and tracks which one the mouse is working with.
type Context struct {
	canvas Canvas
	input  *InputState

	activeWidget string

	windows       map[string]*WindowState
	currentWindow *WindowState

	cursorX float32
	cursorY float32
	rowH    float32
}

// WindowState holds state for a UI window.
type WindowState struct {
	ID     string
	X, Y   float32
	W, H   float32
	Moving bool
	moved  bool
}

// NewContext creates a context drawing on canvas.
func NewContext(canvas Canvas) *Context {
	return &Context{
		canvas:  canvas,
		input:   &InputState{},
		windows: make(map[string]*WindowState),
	}
}

// Input returns the input state for modification.
func (c *Context) Input() *InputState {
	return c.input
}

// ScreenSize returns the canvas size.
func (c *Context) ScreenSize() (float32, float32) {
	w, h := c.canvas.Size()
	return float32(w), float32(h)
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.input.Update()
	c.canvas.Begin()
}

// End finishes the UI frame.
func (c *Context) End() {
	c.canvas.End()
	c.input.EndFrame()
}

// BeginWindow starts a window. Once dragged by its title bar the window
// keeps its own position; until then x and y follow the caller, which lets
// anchored windows track resizes.
func (c *Context) BeginWindow(id string, x, y, w, h float32, title string) {
	ws, ok := c.windows[id]
	if !ok {
		ws = &WindowState{ID: id}
		c.windows[id] = ws
	}
	if !ws.moved {
		ws.X, ws.Y = x, y
	}
	ws.W, ws.H = w, h
	c.currentWindow = ws

	titleBar := Rect{ws.X, ws.Y, ws.W, titleBarH}
	if c.input.MouseLeftPressed && titleBar.Contains(c.input.MouseX, c.input.MouseY) {
		ws.Moving = true
		c.activeWidget = id + "_titlebar"
	}
	if ws.Moving && c.input.MouseLeftDown && (c.input.MouseDeltaX != 0 || c.input.MouseDeltaY != 0) {
		ws.X += c.input.MouseDeltaX
		ws.Y += c.input.MouseDeltaY
		ws.moved = true
	}
	if c.input.MouseLeftReleased {
		ws.Moving = false
		if c.activeWidget == id+"_titlebar" {
			c.activeWidget = ""
		}
	}

	c.panel(ws.X, ws.Y, ws.W, ws.H, ColorPanelBg, ColorPanelBorder)
	c.canvas.DrawRect(ws.X+1, ws.Y+1, ws.W-2, titleBarH-1, ColorTitleBg)
	_, textH := c.canvas.MeasureText(title, TextScale)
	c.canvas.DrawText(ws.X+padding, ws.Y+(titleBarH-textH)/2, title, TextScale, ColorText)

	c.cursorX = ws.X + padding
	c.cursorY = ws.Y + titleBarH + padding
	c.rowH = 0
}

// WindowHeight returns the height of a window holding rows of the given
// heights.
func WindowHeight(rows ...float32) float32 {
	h := titleBarH + 2*padding
	for i, r := range rows {
		if i > 0 {
			h += spacing
		}
		h += r
	}
	return h
}

// EndWindow ends the current window.
func (c *Context) EndWindow() {
	c.currentWindow = nil
}

// ContentWidth is the usable width inside the current window.
func (c *Context) ContentWidth() float32 {
	if c.currentWindow == nil {
		return 0
	}
	return c.currentWindow.W - 2*padding
}

// Row starts a new row with the given height.
func (c *Context) Row(height float32) {
	if c.currentWindow == nil {
		return
	}
	c.cursorX = c.currentWindow.X + padding
	if c.rowH > 0 {
		c.cursorY += c.rowH + spacing
	}
	c.rowH = height
}

func (c *Context) widgetRect(width float32) (Rect, string) {
	h := c.rowH
	if h == 0 {
		h = defaultRowH
	}
	if width == 0 {
		width = c.ContentWidth()
	}
	return Rect{c.cursorX, c.cursorY, width, h}, c.currentWindow.ID + "_"
}

// Button draws a button and returns true if it was clicked this frame.
func (c *Context) Button(id string, width float32, label string) bool {
	return c.button(id, width, label, false)
}

// Toggle draws a button that shows on as highlighted.
func (c *Context) Toggle(id string, width float32, label string, on bool) bool {
	return c.button(id, width, label, on)
}

func (c *Context) button(id string, width float32, label string, on bool) bool {
	if c.currentWindow == nil {
		return false
	}
	rect, prefix := c.widgetRect(width)
	fullID := prefix + id

	hovered := rect.Contains(c.input.MouseX, c.input.MouseY)
	clicked := false
	if hovered {
		if c.input.MouseLeftPressed || c.input.MouseLeftClicked {
			c.activeWidget = fullID
			clicked = true
			c.input.MouseLeftClicked = false
		}
	}
	if c.activeWidget == fullID && !c.input.MouseLeftDown {
		c.activeWidget = ""
	}

	color := ColorButtonNormal
	switch {
	case c.activeWidget == fullID:
		color = ColorButtonActive
	case hovered:
		color = ColorButtonHover
	case on:
		color = ColorButtonActive.Darken(0.3)
	}
	c.panel(rect.X, rect.Y, rect.W, rect.H, color, ColorPanelBorder)
	c.centeredText(rect, label, ColorText)

	c.cursorX += rect.W + spacing
	return clicked
}

// ButtonDisabled draws a button that cannot be clicked.
func (c *Context) ButtonDisabled(id string, width float32, label string) {
	if c.currentWindow == nil {
		return
	}
	rect, _ := c.widgetRect(width)
	c.panel(rect.X, rect.Y, rect.W, rect.H, ColorButtonNormal.Darken(0.3), ColorPanelBorder.Darken(0.3))
	c.centeredText(rect, label, ColorTextDim)
	c.cursorX += rect.W + spacing
}

// Label draws a text label.
func (c *Context) Label(text string) {
	c.LabelColored(text, ColorText)
}

// LabelColored draws a text label in color, clipped to the window.
func (c *Context) LabelColored(text string, color Color) {
	if c.currentWindow == nil {
		return
	}
	avail := c.currentWindow.X + c.currentWindow.W - padding - c.cursorX
	text = c.Fit(text, avail)
	_, h := c.canvas.MeasureText(text, TextScale)
	y := c.cursorY
	if c.rowH > h {
		y += (c.rowH - h) / 2
	}
	c.canvas.DrawText(c.cursorX, y, text, TextScale, color)
	w, _ := c.canvas.MeasureText(text, TextScale)
	c.cursorX += w + spacing
}

// Fit shortens text with an ellipsis so it is at most width wide.
func (c *Context) Fit(text string, width float32) string {
	if w, _ := c.canvas.MeasureText(text, TextScale); w <= width {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		s := string(runes[:n]) + "..."
		if w, _ := c.canvas.MeasureText(s, TextScale); w <= width {
			return s
		}
	}
	return ""
}

// Separator draws a horizontal line and starts a fresh row below it.
func (c *Context) Separator() {
	if c.currentWindow == nil {
		return
	}
	c.cursorY += c.rowH + spacing
	c.rowH = 0
	x := c.currentWindow.X + padding
	c.canvas.DrawRect(x, c.cursorY, c.ContentWidth(), 1, ColorPanelBorder)
	c.cursorY += padding
	c.cursorX = x
}

// ProgressBar draws a bar filled to fraction with label centered on it.
func (c *Context) ProgressBar(fraction float32, width, height float32, label string) {
	if c.currentWindow == nil {
		return
	}
	rect, _ := c.widgetRect(width)
	if height > 0 {
		rect.H = height
	}
	fraction = min(max(fraction, 0), 1)

	c.panel(rect.X, rect.Y, rect.W, rect.H, ColorTrack, ColorPanelBorder)
	if fill := (rect.W - 2) * fraction; fill > 0 {
		c.canvas.DrawRect(rect.X+1, rect.Y+1, fill, rect.H-2, ColorHighlight.Darken(0.35))
	}
	if label != "" {
		c.centeredText(rect, label, ColorText)
	}
	c.cursorX += rect.W + spacing
}

// Checkbox draws a checkbox and returns its new state. The label is part of
// the click target.
func (c *Context) Checkbox(label string, checked bool) bool {
	if c.currentWindow == nil {
		return checked
	}
	y := c.cursorY
	if c.rowH > boxSize {
		y += (c.rowH - boxSize) / 2
	}
	labelW, textH := c.canvas.MeasureText(label, TextScale)
	hit := Rect{c.cursorX, y, boxSize + padding + labelW, boxSize}

	hovered := hit.Contains(c.input.MouseX, c.input.MouseY)
	if hovered {
		if c.input.MouseLeftPressed || c.input.MouseLeftClicked {
			checked = !checked
			c.input.MouseLeftClicked = false
		}
	}

	bg := ColorTrack
	if hovered {
		bg = ColorButtonHover
	}
	c.panel(c.cursorX, y, boxSize, boxSize, bg, ColorPanelBorder)
	if checked {
		inset := float32(3)
		c.canvas.DrawRect(c.cursorX+inset, y+inset, boxSize-2*inset, boxSize-2*inset, ColorHighlight)
	}
	c.canvas.DrawText(c.cursorX+boxSize+padding, y+(boxSize-textH)/2, label, TextScale, ColorText)

	c.cursorX += hit.W + padding
	return checked
}

// Slider draws a horizontal slider over [lo, hi]. A press on the track
// grabs the knob and dragging moves it until release. It returns the new
// value and whether it changed.
func (c *Context) Slider(id string, width float32, value, lo, hi int) (int, bool) {
	if c.currentWindow == nil || hi <= lo {
		return value, false
	}
	rect, prefix := c.widgetRect(width)
	fullID := prefix + id

	hovered := rect.Contains(c.input.MouseX, c.input.MouseY)
	if hovered {
		if c.input.MouseLeftPressed || c.input.MouseLeftClicked {
			c.activeWidget = fullID
			c.input.MouseLeftClicked = false
		}
	}

	next := value
	if c.activeWidget == fullID {
		t := (c.input.MouseX - rect.X) / rect.W
		t = min(max(t, 0), 1)
		next = lo + int(math.Round(float64(t)*float64(hi-lo)))
		if !c.input.MouseLeftDown {
			c.activeWidget = ""
		}
	}

	trackY := rect.Y + rect.H/2 - 2
	c.canvas.DrawRect(rect.X, trackY, rect.W, 4, ColorTrack)
	frac := float32(next-lo) / float32(hi-lo)
	c.canvas.DrawRect(rect.X, trackY, rect.W*frac, 4, ColorHighlight.Darken(0.35))
	knob := ColorHighlight
	if hovered || c.activeWidget == fullID {
		knob = ColorWhite
	}
	c.canvas.DrawRect(rect.X+rect.W*frac-3, rect.Y+2, 6, rect.H-4, knob)

	c.cursorX += rect.W + spacing
	return next, next != value
}

// panel draws a filled rectangle with a one pixel border.
func (c *Context) panel(x, y, w, h float32, bg, border Color) {
	c.canvas.DrawRect(x, y, w, h, bg)
	c.canvas.DrawRect(x, y, w, 1, border)
	c.canvas.DrawRect(x, y+h-1, w, 1, border)
	c.canvas.DrawRect(x, y+1, 1, h-2, border)
	c.canvas.DrawRect(x+w-1, y+1, 1, h-2, border)
}

func (c *Context) centeredText(r Rect, text string, color Color) {
	text = c.Fit(text, r.W-2*spacing)
	w, h := c.canvas.MeasureText(text, TextScale)
	c.canvas.DrawText(r.X+(r.W-w)/2, r.Y+(r.H-h)/2, text, TextScale, color)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float32
}

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

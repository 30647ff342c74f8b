package ui2d

// InputState holds the mouse state the widgets react to. Coordinates are in
// window points, the same space the widgets are laid out in.
type InputState struct {
	MouseX      float32
	MouseY      float32
	MouseDeltaX float32
	MouseDeltaY float32

	MouseLeftDown     bool
	MouseLeftPressed  bool // went down this frame
	MouseLeftReleased bool // went up this frame

	// MouseLeftClicked is set from button-down events so a press and release
	// between two frames still counts as a click. The first widget under
	// the cursor consumes it.
	MouseLeftClicked bool

	prevMouseLeft bool
	prevMouseX    float32
	prevMouseY    float32
}

// MoveTo records the cursor position.
func (i *InputState) MoveTo(x, y float32) {
	i.MouseX = x
	i.MouseY = y
}

// SetLeft records the left button state.
func (i *InputState) SetLeft(down bool) {
	i.MouseLeftDown = down
	if down {
		i.MouseLeftClicked = true
	}
}

// Update derives deltas and edges for a new frame.
func (i *InputState) Update() {
	i.MouseDeltaX = i.MouseX - i.prevMouseX
	i.MouseDeltaY = i.MouseY - i.prevMouseY

	i.MouseLeftPressed = i.MouseLeftDown && !i.prevMouseLeft
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevMouseLeft

	i.prevMouseLeft = i.MouseLeftDown
	i.prevMouseX = i.MouseX
	i.prevMouseY = i.MouseY
}

// EndFrame clears per-frame state.
func (i *InputState) EndFrame() {
	i.MouseLeftClicked = false
}

// IsMouseInRect checks if the mouse is within a rectangle.
func (i *InputState) IsMouseInRect(x, y, w, h float32) bool {
	return Rect{x, y, w, h}.Contains(i.MouseX, i.MouseY)
}

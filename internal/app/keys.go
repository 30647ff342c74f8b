package app

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/techcore/gpu3d/internal/controls"
)

const escape = sdl.SCANCODE_ESCAPE

// keyActions binds keys to controller actions. Escape is handled by the
// main loop and never reaches the controller.
var keyActions = map[sdl.Scancode]controls.Action{
	sdl.SCANCODE_R:        controls.ActionToggleRotation,
	sdl.SCANCODE_W:        controls.ActionToggleWobble,
	sdl.SCANCODE_S:        controls.ActionToggleShadows,
	sdl.SCANCODE_SPACE:    controls.ActionPauseResume,
	sdl.SCANCODE_H:        controls.ActionResetView,
	sdl.SCANCODE_EQUALS:   controls.ActionSpeedUp,
	sdl.SCANCODE_KP_PLUS:  controls.ActionSpeedUp,
	sdl.SCANCODE_MINUS:    controls.ActionSpeedDown,
	sdl.SCANCODE_KP_MINUS: controls.ActionSpeedDown,
	sdl.SCANCODE_L:        controls.ActionReload,
	sdl.SCANCODE_F12:      controls.ActionScreenshot,
}

// ActionFor returns the action bound to key.
func ActionFor(key sdl.Scancode) controls.Action {
	if a, ok := keyActions[key]; ok {
		return a
	}
	// SDL orders the digit row 1..9 then 0.
	switch {
	case key >= sdl.SCANCODE_1 && key <= sdl.SCANCODE_9:
		return controls.PresetAction(int(key-sdl.SCANCODE_1) + 1)
	case key == sdl.SCANCODE_0:
		return controls.PresetAction(0)
	}
	return controls.ActionNone
}

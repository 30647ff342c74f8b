package controls

// Action is a user command.
type Action int

const (
	ActionNone Action = iota
	ActionToggleRotation
	ActionToggleWobble
	ActionToggleShadows
	ActionPauseResume
	ActionResetView
	ActionSpeedUp
	ActionSpeedDown
	ActionReload
	ActionScreenshot

	// ActionPreset0 through ActionPreset9 jump the slider to digit*10.
	ActionPreset0
	ActionPreset1
	ActionPreset2
	ActionPreset3
	ActionPreset4
	ActionPreset5
	ActionPreset6
	ActionPreset7
	ActionPreset8
	ActionPreset9
)

var actionNames = map[Action]string{
	ActionNone:           "none",
	ActionToggleRotation: "toggle_rotation",
	ActionToggleWobble:   "toggle_wobble",
	ActionToggleShadows:  "toggle_shadows",
	ActionPauseResume:    "pause_resume",
	ActionResetView:      "reset_view",
	ActionSpeedUp:        "speed_up",
	ActionSpeedDown:      "speed_down",
	ActionReload:         "reload",
	ActionScreenshot:     "screenshot",
}

func (a Action) String() string {
	if d, ok := a.Preset(); ok {
		return "preset_" + string(rune('0'+d))
	}
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Preset returns the digit of a preset action.
func (a Action) Preset() (int, bool) {
	if a < ActionPreset0 || a > ActionPreset9 {
		return 0, false
	}
	return int(a - ActionPreset0), true
}

// PresetAction returns the preset action for digit, ActionNone when digit
// is not 0-9.
func PresetAction(digit int) Action {
	if digit < 0 || digit > 9 {
		return ActionNone
	}
	return ActionPreset0 + Action(digit)
}

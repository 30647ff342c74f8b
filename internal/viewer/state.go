package viewer

import (
	"fmt"
	"slices"
)

// State is the lifecycle stage of a viewer.
type State int

const (
	StateUninitialized State = iota
	StateSettingUp
	StateReady
	StateFailed
	StateLoading
	StatePopulated
	StatePlaceholder
	StateRunning
	StatePaused
	StateDisposed
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateSettingUp:     "setting_up",
	StateReady:         "ready",
	StateFailed:        "failed",
	StateLoading:       "loading",
	StatePopulated:     "populated",
	StatePlaceholder:   "placeholder",
	StateRunning:       "running",
	StatePaused:        "paused",
	StateDisposed:      "disposed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText writes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	i := slices.Index(stateNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown viewer state %q", text)
	}
	*s = State(i)
	return nil
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// transitions lists the legal successors of each state. LOADING may fail
// when the placeholder itself cannot be built; every live state may be
// disposed.
var transitions = map[State][]State{
	StateUninitialized: {StateSettingUp},
	StateSettingUp:     {StateReady, StateFailed},
	StateReady:         {StateLoading, StateDisposed},
	StateLoading:       {StatePopulated, StatePlaceholder, StateFailed, StateDisposed},
	StatePopulated:     {StateRunning, StateDisposed},
	StatePlaceholder:   {StateRunning, StateDisposed},
	StateRunning:       {StatePaused, StateFailed, StateDisposed},
	StatePaused:        {StateRunning, StateFailed, StateDisposed},
}

// CanTransition reports whether from -> to is legal.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// Displayed identifies what occupies the model slot.
type Displayed int

const (
	DisplayNone Displayed = iota
	DisplayModel
	DisplayPlaceholder
)

func (d Displayed) String() string {
	switch d {
	case DisplayModel:
		return "model"
	case DisplayPlaceholder:
		return "placeholder"
	default:
		return "none"
	}
}

// MarshalText writes the slot name.
func (d Displayed) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a slot name.
func (d *Displayed) UnmarshalText(text []byte) error {
	switch string(text) {
	case "model":
		*d = DisplayModel
	case "placeholder":
		*d = DisplayPlaceholder
	case "none":
		*d = DisplayNone
	default:
		return fmt.Errorf("unknown display slot %q", text)
	}
	return nil
}

// Controls are the independent animation toggles.
type Controls struct {
	AutoRotate bool `json:"auto_rotate"`
	Wobble     bool `json:"wobble"`
	Shadows    bool `json:"shadows"`
}

// Stats is a snapshot of the viewer's runtime state.
type Stats struct {
	FPS           int       `json:"fps"`
	Initialized   bool      `json:"initialized"`
	Loading       bool      `json:"loading"`
	LoadProgress  float64   `json:"load_progress"`
	State         State     `json:"state"`
	Displayed     Displayed `json:"displayed"`
	Running       bool      `json:"running"`
	RotationSpeed float64   `json:"rotation_speed"`
	Controls      Controls  `json:"controls"`
}

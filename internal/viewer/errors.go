package viewer

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing marks a host capability that was not provided.
	ErrMissing = errors.New("not provided")
	// ErrLocalFile means the environment cannot fetch over the network.
	ErrLocalFile = errors.New("running from the local filesystem")
	// ErrEmptyModel is returned when a loader succeeds without a scene.
	ErrEmptyModel = errors.New("loader returned no scene")
	// ErrDisposed is returned by calls that need a live viewer.
	ErrDisposed = errors.New("viewer disposed")
	// ErrLoaderPanic wraps a panic raised inside a Loader.
	ErrLoaderPanic = errors.New("loader panicked")
)

// SetupError is fatal to a viewer instance. Capability names what could not
// be obtained: "scheduler", "surface", "loader", "renderer" or "placeholder".
type SetupError struct {
	Capability string
	Err        error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("viewer setup: %s: %v", e.Capability, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// LoadError is a failed model load. It is recovered by the placeholder
// unless a model is already displayed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load model: %v", e.Err)
	}
	return fmt.Sprintf("load model %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

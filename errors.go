package bramble

import (
	"errors"
	"fmt"
)

var (
	// ErrUnloaded is returned by any access to an explicitly unloaded resource.
	ErrUnloaded = errors.New("bramble: resource is unloaded")
	// ErrOutOfBounds is wrapped by pixel and sample accessors given a bad index.
	ErrOutOfBounds = errors.New("bramble: index out of bounds")
	// ErrNoAwake is returned by AddComponent when the template has no awake function.
	ErrNoAwake = errors.New("bramble: component has no awake function")
	// ErrRootEntity is returned when a script tries to delete the scene root.
	ErrRootEntity = errors.New("bramble: the root entity cannot be deleted")
)

// LoadError reports a file that could not be read or decoded as an asset.
type LoadError struct {
	Kind string // "image" or "sound"
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// BootstrapError reports a failure before the first frame: a missing
// environment root, a broken entry script, or bridge setup. It is fatal.
type BootstrapError struct {
	Stage string
	Err   error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.Stage, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

package audio

import (
	"errors"
	"fmt"
)

// ErrUnknownParam is returned for parameter names outside the schema.
var ErrUnknownParam = errors.New("unknown parameter")

// InitializationError reports that the rendering context could not be
// acquired. The engine stays not ready; callers may retry Initialize.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialize audio engine: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// InvalidParameterError reports a value outside a parameter's domain when
// the engine runs with RejectPolicy.
type InvalidParameterError struct {
	Name     string
	Value    float64
	Min, Max float64
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("parameter %s: value is not in valid range %v - %v: %v", e.Name, e.Min, e.Max, e.Value)
}

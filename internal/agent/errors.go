package agent

import "fmt"

// ToolInitError means a tool could not be constructed, usually a
// missing search key. It is always absorbed: the refiner logs it and
// proceeds tool-free rather than failing the request.
type ToolInitError struct {
	Tool string
	Err  error
}

func (e *ToolInitError) Error() string {
	return fmt.Sprintf("tool %s init failed: %v", e.Tool, e.Err)
}

func (e *ToolInitError) Unwrap() error { return e.Err }

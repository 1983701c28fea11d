package dashboard

import (
	"errors"
	"fmt"
)

// Sentinel failures of the rendered-fetch state machine.
var (
	// ErrNoFrame means no iframe appeared within the discovery timeout.
	ErrNoFrame = errors.New("no iframe found on page")
	// ErrNoUsableFrame means frames were found but none exposed a
	// usable src/data-src address.
	ErrNoUsableFrame = errors.New("no iframe with a usable src")
)

// FetchError is the terminal error of a fetch attempt. Step names the
// pipeline stage that failed; StatusCode is the last HTTP status seen
// (zero when no response was received).
type FetchError struct {
	URL        string
	Step       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s failed (status=%d): %v", e.URL, e.Step, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s failed: %v", e.URL, e.Step, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

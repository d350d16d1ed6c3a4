// Package hotkey registers the global Ctrl+Shift+G chord and reports its
// press and release edges. The Hybrid controller on top distinguishes a
// tap (toggle the microphone) from a hold (push-to-talk).
package hotkey

// Hotkey is one registered global chord. Keydown and Keyup deliver distinct
// edges so callers can time the press.
type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

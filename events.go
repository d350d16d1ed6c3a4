package main

// State identifies the assistant lifecycle phase the display layer renders.
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateSpeaking
	StateOffline
	StateError
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	case StateOffline:
		return "offline"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// EventSink abstracts the display layer so the Bubble Tea TUI, the Fyne
// GUI and the macOS tray can receive the same assistant events.
type EventSink interface {
	Status(text string, state State)
	ChatMessage(speaker, text string, user bool)
	MicState(on bool)
	AudioLevel(level float64)
	DeviceLine(text string)
	Warning(text string)
}

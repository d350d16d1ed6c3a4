package hotkey

import (
	"sync/atomic"
	"time"
)

// Hybrid layers tap-to-toggle and hold-to-talk behavior over a single
// chord. Every press emits a start signal. A release after the long-press
// threshold stops on release; an earlier release leaves the session open
// until the next tap.
type Hybrid struct {
	startCh chan struct{}
	stopCh  chan struct{}
	toggled atomic.Bool
}

// NewHybrid builds the controller on top of an existing Hotkey.
// longPress is the hold duration that separates a tap from push-to-talk.
func NewHybrid(hk Hotkey, longPress time.Duration) *Hybrid {
	h := &Hybrid{
		startCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}, 1),
	}
	go h.run(hk, longPress)
	return h
}

// Start signals when the microphone should open.
func (h *Hybrid) Start() <-chan struct{} { return h.startCh }

// StopChan signals when the microphone should close, for both tap and
// hold sessions.
func (h *Hybrid) StopChan() <-chan struct{} { return h.stopCh }

// IsToggle reports whether the current session came from a short tap and
// therefore stays open until the next tap.
func (h *Hybrid) IsToggle() bool { return h.toggled.Load() }

func (h *Hybrid) run(hk Hotkey, longPress time.Duration) {
	for {
		<-hk.Keydown()
		signal(h.startCh)

		timer := time.NewTimer(longPress)
		select {
		case <-timer.C:
			// Held past the threshold: stop when the chord releases.
			<-hk.Keyup()
			signal(h.stopCh)
		case <-hk.Keyup():
			if !timer.Stop() {
				<-timer.C
			}
			h.toggled.Store(true)
			// Toggled on: the next full tap closes the session.
			<-hk.Keydown()
			<-hk.Keyup()
			h.toggled.Store(false)
			signal(h.stopCh)
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

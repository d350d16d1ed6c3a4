//go:build !linux

package hotkey

import (
	"sync"

	"golang.design/x/hotkey"
)

type xHotkey struct {
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
	stop    chan struct{}
	once    sync.Once
}

func New() Hotkey {
	return &xHotkey{
		hk:      hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyG),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	go h.forward(h.hk.Keydown(), h.keydown)
	go h.forward(h.hk.Keyup(), h.keyup)
	return nil
}

// forward relays events with a non-blocking send, same as the evdev
// implementation: a stale unconsumed edge is dropped, not queued.
func (h *xHotkey) forward(src <-chan hotkey.Event, dst chan<- struct{}) {
	for {
		select {
		case <-src:
			select {
			case dst <- struct{}{}:
			default:
			}
		case <-h.stop:
			return
		}
	}
}

func (h *xHotkey) Unregister() {
	h.once.Do(func() {
		close(h.stop)
		h.hk.Unregister()
	})
}

func (h *xHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *xHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func Diagnose() (string, error) {
	return "hotkey support available (Ctrl+Shift+G)", nil
}

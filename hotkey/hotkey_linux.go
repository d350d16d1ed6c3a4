//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyLCtrl   = 29
	keyRCtrl   = 97
	keyLShift  = 42
	keyRShift  = 54
	keyG       = 34
)

// 16 bytes of timeval, then type, code, value.
const inputEventSize = 24

type inputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

func decodeEvents(buf []byte) []inputEvent {
	var evs []inputEvent
	for i := 0; i+inputEventSize <= len(buf); i += inputEventSize {
		evs = append(evs, inputEvent{
			Type:  binary.LittleEndian.Uint16(buf[i+16:]),
			Code:  binary.LittleEndian.Uint16(buf[i+18:]),
			Value: int32(binary.LittleEndian.Uint32(buf[i+20:])),
		})
	}
	return evs
}

// chordState follows modifier and G key state across raw evdev events
// and reports the edges of the Ctrl+Shift+G chord. Autorepeat events
// (value 2) keep a held key held.
type chordState struct {
	ctrl, shift, chord bool
}

func (c *chordState) feed(ev inputEvent) (down, up bool) {
	if ev.Type != evKey {
		return false, false
	}
	pressed := ev.Value == keyPress
	released := ev.Value == keyRelease

	switch ev.Code {
	case keyLCtrl, keyRCtrl:
		c.ctrl = pressed || (!released && c.ctrl)
	case keyLShift, keyRShift:
		c.shift = pressed || (!released && c.shift)
	case keyG:
		if pressed && !c.chord && c.ctrl && c.shift {
			c.chord = true
			return true, false
		}
		if released && c.chord {
			c.chord = false
			return false, true
		}
	}
	return false, false
}

type linuxHotkey struct {
	keydown chan struct{}
	keyup   chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

func New() Hotkey {
	return &linuxHotkey{
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

// Register opens every readable keyboard under /dev/input and starts a
// reader per device. It fails only when no device can be opened, which
// on most distributions means the user is not in the input group.
func (h *linuxHotkey) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	h.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f)
	}

	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	return nil
}

func (h *linuxHotkey) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var chord chordState

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for _, ev := range decodeEvents(buf[:n]) {
			down, up := chord.feed(ev)
			if down {
				select {
				case h.keydown <- struct{}{}:
				default:
				}
			}
			if up {
				select {
				case h.keyup <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (h *linuxHotkey) Unregister() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *linuxHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *linuxHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

// isKeyboard filters out mice and buttons: a real keyboard advertises a
// wide key capability bitmap in sysfs.
func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}

// Diagnose explains why the hotkey cannot work on this machine, in terms
// a user can act on.
func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}

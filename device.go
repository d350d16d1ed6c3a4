package main

import (
	"fmt"
	"os"

	"github.com/23578aniket/Ghost/audio"

	"golang.org/x/term"
)

type pickerKey int

const (
	keyNone pickerKey = iota
	keyUp
	keyDown
	keyEnter
	keyAbort
)

func decodePickerKey(buf []byte, n int) pickerKey {
	if n == 1 {
		switch buf[0] {
		case 13:
			return keyEnter
		case 3:
			return keyAbort
		case 'j':
			return keyDown
		case 'k':
			return keyUp
		}
	}
	if n == 3 && buf[0] == 0x1b && buf[1] == '[' {
		switch buf[2] {
		case 'A':
			return keyUp
		case 'B':
			return keyDown
		}
	}
	return keyNone
}

func deviceLabel(d audio.DeviceInfo) string {
	if audio.IsBluetooth(d.Name) {
		return d.Name + " (bluetooth: lower recognition quality)"
	}
	return d.Name
}

// selectDevice runs the interactive microphone picker. With one capture
// device it is used without asking.
func selectDevice(ctx audio.Context) (*audio.DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}

	if len(devices) == 1 {
		fmt.Printf("Using microphone: %s\n", devices[0].Name)
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("setup needs an interactive terminal; pass -device instead")
	}

	// Raw mode for arrow key input.
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	renderList := func() {
		fmt.Print("\r\x1b[J") // clear from cursor to end
		fmt.Print("Select microphone (↑/↓, Enter to confirm):\r\n\r\n")
		for i, d := range devices {
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", deviceLabel(d))
			} else {
				fmt.Printf("    %s\r\n", deviceLabel(d))
			}
		}
	}

	renderList()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		switch decodePickerKey(buf, n) {
		case keyEnter:
			fmt.Printf("\r\n")
			term.Restore(fd, oldState)
			return &devices[cursor], nil
		case keyAbort:
			fmt.Printf("\r\n")
			term.Restore(fd, oldState)
			os.Exit(0)
		case keyUp:
			if cursor > 0 {
				cursor--
			}
		case keyDown:
			if cursor < len(devices)-1 {
				cursor++
			}
		}

		// Move back up and repaint in place.
		fmt.Printf("\x1b[%dA", len(devices)+2)
		renderList()
	}
}

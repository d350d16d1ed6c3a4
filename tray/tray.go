// Package tray drives the macOS menu bar presence: microphone toggle,
// status mirror, last-reply copy, launch at login and quit.
package tray

import (
	"sync"
	"time"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	copyLastFn func()
	micFn      func()

	micOn bool

	loginOn bool
	loginCb func(bool) error
)

// OnCopyLast registers the handler for the Copy Last Reply item.
func OnCopyLast(fn func()) { copyLastFn = fn }

// OnMicToggle registers the handler run when the microphone item is clicked.
func OnMicToggle(fn func()) { micFn = fn }

func SetLogin(on bool)            { loginOn = on }
func OnLogin(fn func(bool) error) { loginCb = fn }

// SetMic reflects the microphone state on the icon and menu item.
func SetMic(on bool) {
	micOn = on
	updateMicIcon(on)
}

// SetStatus mirrors the assistant status line into the menu.
func SetStatus(text string) {
	updateStatusTitle(text)
}

// SetError flashes the warning badge and puts the message in the
// tooltip, then restores both after ten seconds.
func SetError(msg string) {
	updateTooltip("ghost – " + msg)
	updateWarnIcon()
	go func() {
		time.Sleep(10 * time.Second)
		updateTooltip("ghost – voice assistant")
		updateMicIcon(micOn)
	}()
}

// SetLastReply arms the Copy Last Reply item with a short preview.
func SetLastReply(text string) {
	r := []rune(text)
	if len(r) > 40 {
		text = string(r[:40]) + "..."
	}
	updateCopyLastTitle("Copy Last Reply: " + text)
}

func SetUpdateAvailable(version string) {
	addUpdateMenuItem(version)
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}

//go:build darwin

package actions

import (
	"fmt"
	"os/exec"

	"github.com/micmonay/keybd_event"
)

// Media and volume keys need NX system events on macOS which keybd_event
// does not synthesize, so only the browser chords are wired up.
func tapKey(action string) error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	switch action {
	case "new_tab":
		kb.SetKeys(keybd_event.VK_T)
		kb.HasSuper(true)
	case "close_tab":
		kb.SetKeys(keybd_event.VK_W)
		kb.HasSuper(true)
	case "next_tab":
		kb.SetKeys(keybd_event.VK_TAB)
		kb.HasCTRL(true)
	case "previous_tab":
		kb.SetKeys(keybd_event.VK_TAB)
		kb.HasCTRL(true)
		kb.HasSHIFT(true)
	case "refresh":
		kb.SetKeys(keybd_event.VK_R)
		kb.HasSuper(true)
	default:
		return fmt.Errorf("key action %q is not supported on macOS", action)
	}
	return kb.Launching()
}

func openURL(u string) error {
	return exec.Command("open", u).Start()
}

func launchApp(app string) error {
	return exec.Command("open", "-a", app).Run()
}

func killApp(app string) error {
	return exec.Command("pkill", "-i", "-f", app).Run()
}

func powerCommand(action string) error {
	switch action {
	case "shutdown":
		return exec.Command("osascript", "-e", `tell application "System Events" to shut down`).Run()
	case "restart":
		return exec.Command("osascript", "-e", `tell application "System Events" to restart`).Run()
	case "sleep":
		return exec.Command("pmset", "sleepnow").Run()
	case "lock":
		return exec.Command("pmset", "displaysleepnow").Run()
	}
	return fmt.Errorf("power action %q is not supported on macOS", action)
}

func screenshotCmd(path string) error {
	return exec.Command("screencapture", "-x", path).Run()
}

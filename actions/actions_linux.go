//go:build linux

package actions

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/micmonay/keybd_event"
)

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func initKeys() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
	})
	return kbErr
}

func tapKey(action string) error {
	if err := initKeys(); err != nil {
		return err
	}
	kb.Clear()
	switch action {
	case "volume_up":
		kb.SetKeys(keybd_event.VK_VOLUMEUP)
	case "volume_down":
		kb.SetKeys(keybd_event.VK_VOLUMEDOWN)
	case "mute":
		kb.SetKeys(keybd_event.VK_MUTE)
	case "play_pause":
		kb.SetKeys(keybd_event.VK_PLAYPAUSE)
	case "next_track":
		kb.SetKeys(keybd_event.VK_NEXTSONG)
	case "previous_track":
		kb.SetKeys(keybd_event.VK_PREVIOUSSONG)
	case "stop":
		kb.SetKeys(keybd_event.VK_STOPCD)
	case "new_tab":
		kb.SetKeys(keybd_event.VK_T)
		kb.HasCTRL(true)
	case "close_tab":
		kb.SetKeys(keybd_event.VK_W)
		kb.HasCTRL(true)
	case "next_tab":
		kb.SetKeys(keybd_event.VK_TAB)
		kb.HasCTRL(true)
	case "previous_tab":
		kb.SetKeys(keybd_event.VK_TAB)
		kb.HasCTRL(true)
		kb.HasSHIFT(true)
	case "refresh":
		kb.SetKeys(keybd_event.VK_R)
		kb.HasCTRL(true)
	default:
		return fmt.Errorf("unknown key action %q", action)
	}
	return kb.Launching()
}

func openURL(u string) error {
	return exec.Command("xdg-open", u).Start()
}

func launchApp(app string) error {
	name := strings.ToLower(strings.ReplaceAll(app, " ", "-"))
	return exec.Command(name).Start()
}

func killApp(app string) error {
	return exec.Command("pkill", "-i", "-f", app).Run()
}

func powerCommand(action string) error {
	switch action {
	case "shutdown":
		return exec.Command("systemctl", "poweroff").Run()
	case "restart":
		return exec.Command("systemctl", "reboot").Run()
	case "sleep":
		return exec.Command("systemctl", "suspend").Run()
	case "hibernate":
		return exec.Command("systemctl", "hibernate").Run()
	case "lock":
		return exec.Command("loginctl", "lock-session").Run()
	}
	return fmt.Errorf("unknown power action %q", action)
}

func screenshotCmd(path string) error {
	if err := exec.Command("gnome-screenshot", "-f", path).Run(); err == nil {
		return nil
	}
	return exec.Command("scrot", path).Run()
}

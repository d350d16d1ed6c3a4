//go:build windows

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
		kb.SetKeys(keybd_event.VK_VOLUME_UP)
	case "volume_down":
		kb.SetKeys(keybd_event.VK_VOLUME_DOWN)
	case "mute":
		kb.SetKeys(keybd_event.VK_VOLUME_MUTE)
	case "play_pause":
		kb.SetKeys(keybd_event.VK_MEDIA_PLAY_PAUSE)
	case "next_track":
		kb.SetKeys(keybd_event.VK_MEDIA_NEXT_TRACK)
	case "previous_track":
		kb.SetKeys(keybd_event.VK_MEDIA_PREV_TRACK)
	case "stop":
		kb.SetKeys(keybd_event.VK_MEDIA_STOP)
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
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", u).Start()
}

func launchApp(app string) error {
	return exec.Command("cmd", "/c", "start", "", app).Run()
}

func killApp(app string) error {
	image := app
	if !strings.HasSuffix(strings.ToLower(image), ".exe") {
		image += ".exe"
	}
	return exec.Command("taskkill", "/F", "/IM", image).Run()
}

func powerCommand(action string) error {
	switch action {
	case "shutdown":
		return exec.Command("shutdown", "/s", "/t", "1").Run()
	case "restart":
		return exec.Command("shutdown", "/r", "/t", "1").Run()
	case "sleep":
		return exec.Command("rundll32", "powrprof.dll,SetSuspendState", "0,1,0").Run()
	case "hibernate":
		return exec.Command("shutdown", "/h").Run()
	case "lock":
		return exec.Command("rundll32", "user32.dll,LockWorkStation").Run()
	}
	return fmt.Errorf("unknown power action %q", action)
}

func screenshotCmd(path string) error {
	script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; `+
		`$b = [System.Windows.Forms.SystemInformation]::VirtualScreen; `+
		`$bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height; `+
		`$g = [System.Drawing.Graphics]::FromImage($bmp); `+
		`$g.CopyFromScreen($b.Left, $b.Top, 0, 0, $bmp.Size); `+
		`$bmp.Save('%s'); $g.Dispose(); $bmp.Dispose()`, path)
	return exec.Command("powershell", "-NoProfile", "-Command", script).Run()
}

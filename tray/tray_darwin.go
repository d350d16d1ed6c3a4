//go:build darwin

package tray

import (
	"os/exec"

	"fyne.io/systray"
	"golang.design/x/hotkey/mainthread"
)

var (
	mStatus *systray.MenuItem
	mMic    *systray.MenuItem
	mCopy   *systray.MenuItem
	mLogin  *systray.MenuItem
	mUpdate *systray.MenuItem
)

func Init() <-chan struct{} {
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func onReady() {
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	systray.SetTooltip("ghost – voice assistant")

	mStatus = systray.AddMenuItem("Awaiting Orders.", "Assistant status")
	mStatus.Disable()

	systray.AddSeparator()

	mMic = systray.AddMenuItem("Enable Microphone", "Toggle the microphone")
	go func() {
		for range mMic.ClickedCh {
			if micFn != nil {
				micFn()
			}
		}
	}()

	mCopy = systray.AddMenuItem("Copy Last Reply", "Copy the last reply to the clipboard")
	mCopy.Disable()
	go func() {
		for range mCopy.ClickedCh {
			if copyLastFn != nil {
				copyLastFn()
			}
		}
	}()

	mLogin = systray.AddMenuItemCheckbox("Start on Login", "Launch ghost when you log in", loginOn)
	go func() {
		for range mLogin.ClickedCh {
			if mLogin.Checked() {
				mLogin.Uncheck()
			} else {
				mLogin.Check()
			}
			if loginCb != nil {
				loginCb(mLogin.Checked())
			}
		}
	}()

	mUpdate = systray.AddMenuItem("Update available", "Open release page")
	mUpdate.Hide()
	go func() {
		for range mUpdate.ClickedCh {
			exec.Command("open", "https://github.com/23578aniket/Ghost/releases/latest").Start()
		}
	}()

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit ghost")
	go func() {
		for range mQuit.ClickedCh {
			Quit()
		}
	}()
}

func onExit() {
	closeOnce.Do(func() { close(quitCh) })
}

func updateMicIcon(on bool) {
	if on {
		systray.SetIcon(iconMicHi)
		if mMic != nil {
			mMic.SetTitle("Disable Microphone")
		}
	} else {
		systray.SetTemplateIcon(iconIdleHi, iconIdle)
		if mMic != nil {
			mMic.SetTitle("Enable Microphone")
		}
	}
}

func updateWarnIcon() {
	systray.SetIcon(iconWarnHi)
}

func updateStatusTitle(text string) {
	if mStatus != nil {
		mStatus.SetTitle(text)
	}
}

func updateTooltip(msg string) {
	systray.SetTooltip(msg)
}

func updateCopyLastTitle(title string) {
	if mCopy != nil {
		mCopy.SetTitle(title)
		mCopy.Enable()
	}
}

func addUpdateMenuItem(version string) {
	if mUpdate != nil {
		mUpdate.SetTitle("Update available: " + version)
		mUpdate.Show()
	}
}

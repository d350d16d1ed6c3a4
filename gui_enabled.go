//go:build gui

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/23578aniket/Ghost/audio"
	"github.com/23578aniket/Ghost/clipboard"
	"github.com/23578aniket/Ghost/gui"
	"github.com/23578aniket/Ghost/log"
)

var guiApp *gui.App

// Audio context initialized on main thread for macOS Core Audio compatibility
var guiAudioCtx audio.Context

// guiSink adapts assistant events to the Fyne app.
type guiSink struct{ app *gui.App }

func (s guiSink) Status(text string, state State) {
	active := state == StateListening || state == StateProcessing || state == StateSpeaking
	s.app.SetStatus(text, active)
}

func (s guiSink) ChatMessage(who, text string, user bool) { s.app.AddChat(who, text) }

func (s guiSink) MicState(on bool) { s.app.SetMic(on) }

func (s guiSink) AudioLevel(level float64) { s.app.SetLevel(level) }

func (s guiSink) DeviceLine(text string) {}

func (s guiSink) Warning(text string) { s.app.SetWarning(text) }

func initGUI() {
	guiMode = true

	// Initialize the audio context on the main thread BEFORE Fyne starts.
	// macOS Core Audio requires main thread access for capture setup.
	var err error
	guiAudioCtx, err = audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}

	// Lock this goroutine to the OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(func() {
		run()
	})
	sink = guiSink{app: guiApp}
	if err := gui.Run(guiApp); err != nil {
		guiAudioCtx.Close()
		panic(err)
	}
}

// wireGUI connects the window and Fyne tray controls to the core once it
// exists, then shows the window.
func wireGUI(core *Core) {
	if guiApp == nil {
		return
	}
	guiApp.OnMicToggle(func() {
		core.Submit(Command{Kind: CmdToggleMic})
	})
	guiApp.OnCopyLast(func() {
		if text := core.LastReply(); text != "" {
			if err := clipboard.Copy(text); err != nil {
				log.Errorf("copy last reply: %v", err)
			}
		}
	})
	guiApp.Show()
}

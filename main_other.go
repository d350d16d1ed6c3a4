//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// Crash logging goes in before any CGO can take the process down.
	initCrashLog()

	// -gui is dispatched before flag.Parse because the GUI needs the
	// main thread from the start.
	for _, arg := range os.Args[1:] {
		if arg == "-gui" || arg == "--gui" {
			initGUI() // takes main thread, calls run() in goroutine
			return
		}
	}
	mainthread.Init(run)
}

//go:build linux

package main

import "os"

func main() {
	// Crash logging goes in before any CGO can take the process down.
	initCrashLog()

	for _, arg := range os.Args[1:] {
		if arg == "-gui" || arg == "--gui" {
			initGUI()
			return
		}
	}
	run()
}

//go:build !windows

// Package shutdown wires the signals that should stop the assistant
// cleanly, so state files and logs are flushed before exit.
package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}

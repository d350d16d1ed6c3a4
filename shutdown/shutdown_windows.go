//go:build windows

package shutdown

import (
	"os"
	"os/signal"
)

// Windows has no SIGTERM; Ctrl+C and console close both surface as
// os.Interrupt.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt)
}

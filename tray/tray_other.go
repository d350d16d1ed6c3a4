//go:build !darwin

package tray

func Init() <-chan struct{}      { return make(chan struct{}) }
func updateMicIcon(bool)         {}
func updateStatusTitle(string)   {}
func updateTooltip(string)       {}
func updateWarnIcon()            {}
func updateCopyLastTitle(string) {}
func addUpdateMenuItem(string)   {}

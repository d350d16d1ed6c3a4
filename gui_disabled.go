//go:build !gui

package main

import "github.com/23578aniket/Ghost/audio"

// Stub for non-GUI builds (guiMode stays false, so this is never consulted)
var guiAudioCtx audio.Context

func initGUI() {
	panic("ghost: built without GUI support (rebuild with -tags gui)")
}

func wireGUI(*Core) {}

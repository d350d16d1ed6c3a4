package main

import "time"

const tickInterval = 100 * time.Millisecond

type PhraseEvent int

const (
	PhraseNone    PhraseEvent = iota
	PhraseSpeech              // first speech heard in this window
	PhraseEnd                 // speech happened, then a full pause
	PhraseTimeout             // window cap reached
)

// phraseMonitor segments one listening window into a phrase. Speech begins
// the phrase; pauseTicks of trailing silence end it; limitTicks cap the
// whole window whether or not anyone spoke.
type phraseMonitor struct {
	pauseTicks int
	limitTicks int

	ticks      int
	speechSeen bool
	silenceRun int
}

func newPhraseMonitor(pause, limit time.Duration) *phraseMonitor {
	pauseTicks := int(pause / tickInterval)
	if pauseTicks < 1 {
		pauseTicks = 1
	}
	limitTicks := int(limit / tickInterval)
	if limitTicks < 1 {
		limitTicks = 1
	}
	return &phraseMonitor{
		pauseTicks: pauseTicks,
		limitTicks: limitTicks,
	}
}

func (m *phraseMonitor) Tick(hasSpeech bool) PhraseEvent {
	m.ticks++

	first := false
	if hasSpeech {
		first = !m.speechSeen
		m.speechSeen = true
		m.silenceRun = 0
	} else if m.speechSeen {
		m.silenceRun++
	}

	// A completed pause outranks the window cap on the same tick.
	if m.speechSeen && m.silenceRun >= m.pauseTicks {
		return PhraseEnd
	}
	if m.ticks >= m.limitTicks {
		return PhraseTimeout
	}
	if first {
		return PhraseSpeech
	}
	return PhraseNone
}

// SpeechSeen reports whether any speech was heard this window. Windows that
// close without it are discarded instead of sent to the recognizer.
func (m *phraseMonitor) SpeechSeen() bool {
	return m.speechSeen
}

func (m *phraseMonitor) Reset() {
	m.ticks = 0
	m.speechSeen = false
	m.silenceRun = 0
}

package main

import (
	"testing"
	"time"
)

func probeMonitor() *phraseMonitor {
	return newPhraseMonitor(800*time.Millisecond, 2*time.Second)
}

func commandMonitor() *phraseMonitor {
	return newPhraseMonitor(800*time.Millisecond, 5*time.Second)
}

func feedPhrase(m *phraseMonitor, speech bool, n int) PhraseEvent {
	var last PhraseEvent
	for i := 0; i < n; i++ {
		last = m.Tick(speech)
	}
	return last
}

func TestPhraseSpeechOnFirstSpeech(t *testing.T) {
	m := commandMonitor()
	if ev := m.Tick(true); ev != PhraseSpeech {
		t.Fatalf("expected PhraseSpeech on first speech tick, got %d", ev)
	}
	if ev := m.Tick(true); ev != PhraseNone {
		t.Fatalf("expected PhraseNone on continued speech, got %d", ev)
	}
}

func TestPhraseEndAfterPause(t *testing.T) {
	m := commandMonitor()
	feedPhrase(m, true, 5)
	// 0.8s pause is 8 ticks; the first 7 must not end the phrase
	for i := 0; i < 7; i++ {
		if ev := m.Tick(false); ev != PhraseNone {
			t.Fatalf("unexpected event at silence tick %d: %d", i, ev)
		}
	}
	if ev := m.Tick(false); ev != PhraseEnd {
		t.Fatalf("expected PhraseEnd at 8th silence tick, got %d", ev)
	}
	if !m.SpeechSeen() {
		t.Error("expected SpeechSeen after a spoken phrase")
	}
}

func TestPhraseTimeoutWithoutSpeech(t *testing.T) {
	m := probeMonitor()
	// 2s window is 20 ticks
	for i := 0; i < 19; i++ {
		if ev := m.Tick(false); ev != PhraseNone {
			t.Fatalf("unexpected event at tick %d: %d", i, ev)
		}
	}
	if ev := m.Tick(false); ev != PhraseTimeout {
		t.Fatalf("expected PhraseTimeout at tick 20, got %d", ev)
	}
	if m.SpeechSeen() {
		t.Error("expected no speech seen in an empty window")
	}
}

func TestPhraseTimeoutDuringSpeech(t *testing.T) {
	m := commandMonitor()
	// Continuous speech never pauses, so the 5s cap has to cut it off
	for i := 0; i < 49; i++ {
		ev := m.Tick(true)
		if ev == PhraseEnd {
			t.Fatalf("unexpected PhraseEnd during continuous speech at tick %d", i)
		}
	}
	if ev := m.Tick(true); ev != PhraseTimeout {
		t.Fatalf("expected PhraseTimeout at tick 50, got %d", ev)
	}
	if !m.SpeechSeen() {
		t.Error("expected SpeechSeen on a capped phrase")
	}
}

func TestPhrasePauseResetBySpeech(t *testing.T) {
	m := commandMonitor()
	m.Tick(true)
	feedPhrase(m, false, 7) // one tick short of a pause
	m.Tick(true)            // speech resets the silence run
	if ev := feedPhrase(m, false, 7); ev != PhraseNone {
		t.Fatalf("expected PhraseNone before the pause completes, got %d", ev)
	}
	if ev := m.Tick(false); ev != PhraseEnd {
		t.Fatalf("expected PhraseEnd after the second full pause, got %d", ev)
	}
}

func TestPhraseEndBeatsTimeout(t *testing.T) {
	// Pause completes on the same tick the cap lands; the pause wins.
	m := newPhraseMonitor(300*time.Millisecond, 500*time.Millisecond)
	feedPhrase(m, true, 2)
	feedPhrase(m, false, 2)
	if ev := m.Tick(false); ev != PhraseEnd {
		t.Fatalf("expected PhraseEnd on the cap tick, got %d", ev)
	}
}

func TestPhraseReset(t *testing.T) {
	m := probeMonitor()
	feedPhrase(m, true, 3)
	feedPhrase(m, false, 8)
	m.Reset()
	if m.SpeechSeen() {
		t.Error("expected no speech seen after reset")
	}
	for i := 0; i < 19; i++ {
		if ev := m.Tick(false); ev != PhraseNone {
			t.Fatalf("unexpected event at tick %d after reset: %d", i, ev)
		}
	}
	if ev := m.Tick(false); ev != PhraseTimeout {
		t.Fatal("expected PhraseTimeout after a full window post-reset")
	}
}

func TestPhraseMinimumTicks(t *testing.T) {
	// Degenerate durations still make a usable monitor
	m := newPhraseMonitor(10*time.Millisecond, 50*time.Millisecond)
	if ev := m.Tick(false); ev != PhraseTimeout {
		t.Fatalf("expected immediate PhraseTimeout with a 1-tick cap, got %d", ev)
	}
}

package intent

import (
	"path/filepath"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(filepath.Join(t.TempDir(), "intents.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngineSeedsOnFirstOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intents.db")

	e, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !e.Trained() {
		t.Error("engine not trained after seeding")
	}
	n1, err := e.store.TrainingCount()
	if err != nil {
		t.Fatalf("TrainingCount() error: %v", err)
	}
	if n1 == 0 {
		t.Fatal("no training data after seeding")
	}
	e.Close()

	// Reopening must not duplicate seeds.
	e2, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen error: %v", err)
	}
	defer e2.Close()
	n2, err := e2.store.TrainingCount()
	if err != nil {
		t.Fatalf("TrainingCount() error: %v", err)
	}
	if n2 != n1 {
		t.Errorf("reopen changed training count: %d != %d", n2, n1)
	}
}

func TestPredictSeededIntents(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		text   string
		intent string
		typ    string
		entity string
	}{
		{"what time is it now", "get_time", "time_query", ""},
		{"weather in Paris", "get_weather", "weather_query", "Paris"},
		{"who is Albert Einstein", "get_info", "information_query", "Albert Einstein"},
		{"goodbye", "exit", "exit_command", "terminate"},
		{"what is your name", "system_info", "system_query", "your name"},
		{"good morning", "greeting", "greeting", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p := e.Predict(tt.text)
			if p.Intent != tt.intent {
				t.Errorf("intent = %q, want %q (source %s, conf %.2f)", p.Intent, tt.intent, p.Source, p.Confidence)
			}
			if p.Type != tt.typ {
				t.Errorf("type = %q, want %q", p.Type, tt.typ)
			}
			if p.Entity != tt.entity {
				t.Errorf("entity = %q, want %q", p.Entity, tt.entity)
			}
			if p.Confidence <= 0 {
				t.Errorf("confidence = %v, want > 0", p.Confidence)
			}
		})
	}
}

func TestPredictUnknown(t *testing.T) {
	e := newTestEngine(t)

	for _, text := range []string{"", "   ", "zxqv wvvk"} {
		p := e.Predict(text)
		if p.Intent != "unknown" {
			t.Errorf("Predict(%q) intent = %q, want unknown", text, p.Intent)
		}
		if p.Source != "none" {
			t.Errorf("Predict(%q) source = %q, want none", text, p.Source)
		}
	}
}

func TestUncertainAndFeedback(t *testing.T) {
	e := newTestEngine(t)

	// Gibberish scores zero confidence and must show up for review.
	e.Predict("frobnicate zxqv")

	uncertain, err := e.Uncertain()
	if err != nil {
		t.Fatalf("Uncertain() error: %v", err)
	}
	found := false
	for _, q := range uncertain {
		if q.Text == "frobnicate zxqv" {
			found = true
		}
	}
	if !found {
		t.Fatal("low-confidence query missing from uncertain list")
	}

	before, _ := e.store.TrainingCount()
	if err := e.Feedback("frobnicate zxqv", "get_info"); err != nil {
		t.Fatalf("Feedback() error: %v", err)
	}
	after, _ := e.store.TrainingCount()
	if after != before+1 {
		t.Errorf("training count = %d, want %d", after, before+1)
	}

	// Corrected queries drop out of the review list.
	uncertain, err = e.Uncertain()
	if err != nil {
		t.Fatalf("Uncertain() error: %v", err)
	}
	for _, q := range uncertain {
		if q.Text == "frobnicate zxqv" {
			t.Error("corrected query still listed as uncertain")
		}
	}

	// Feeding back the same correction twice must not duplicate training data.
	e.Predict("frobnicate zxqv")
	if err := e.Feedback("frobnicate zxqv", "get_info"); err != nil {
		t.Fatalf("Feedback() repeat error: %v", err)
	}
	final, _ := e.store.TrainingCount()
	if final != after {
		t.Errorf("repeated feedback changed training count: %d != %d", final, after)
	}
}

func TestAddExampleSkipsEmpty(t *testing.T) {
	e := newTestEngine(t)

	before, _ := e.store.TrainingCount()
	if err := e.AddExample("a an it", "greeting", "user"); err != nil {
		t.Fatalf("AddExample() error: %v", err)
	}
	after, _ := e.store.TrainingCount()
	if after != before {
		t.Errorf("empty example was stored: %d != %d", after, before)
	}
}

func TestTrainable(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   bool
	}{
		{"empty", map[string]int{}, false},
		{"one intent", map[string]int{"get_time": 5}, false},
		{"too few samples", map[string]int{"get_time": 5, "exit": 2}, false},
		{"enough", map[string]int{"get_time": 3, "exit": 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trainable(tt.counts); got != tt.want {
				t.Errorf("trainable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"what's the weather in London", "London"},
		{"weather in New York please", "New York"},
		{"will it rain tomorrow in Paris", "Paris"},
		{"temperature in Mumbai now", "Mumbai"},
		{"Delhi weather", "Delhi"},
		{"how is the weather today", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := extractLocation(tt.text); got != tt.want {
				t.Errorf("extractLocation(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractSubject(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"who is Albert Einstein", "Albert Einstein"},
		{"what is the capital of France?", "capital of France"},
		{"how does a volcano erupt", "volcano erupt"},
		{"find information about gravity", "information about gravity"},
		{"tell me about yourself", ""},
		{"play some jazz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := extractSubject(tt.text); got != tt.want {
				t.Errorf("extractSubject(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSystemEntity(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"what is your name", "your name"},
		{"who made you", "creator"},
		{"who created you", "creator"},
		{"what can you do", "capabilities"},
		{"tell me about yourself", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := systemEntity(tt.text); got != tt.want {
				t.Errorf("systemEntity(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

package recognizer

import (
	"context"
	"encoding/binary"
	"net/http"
	"testing"
	"time"

	"github.com/23578aniket/Ghost/encoder"
)

func TestNetworkMetricsSum(t *testing.T) {
	m := &NetworkMetrics{
		ConnWait:   10 * time.Millisecond,
		DNS:        20 * time.Millisecond,
		TCP:        30 * time.Millisecond,
		TLS:        40 * time.Millisecond,
		ReqHeaders: 5 * time.Millisecond,
		ReqBody:    15 * time.Millisecond,
		TTFB:       50 * time.Millisecond,
		Download:   25 * time.Millisecond,
	}
	got := m.Sum()
	want := 195 * time.Millisecond
	if got != want {
		t.Errorf("Sum() = %v, want %v", got, want)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	h := http.Header{}
	h.Set("X-Rate-Limit", "100")

	if got := firstNonEmpty(h, "X-Missing", "X-Rate-Limit"); got != "100" {
		t.Errorf("got %q, want %q", got, "100")
	}
	if got := firstNonEmpty(h, "X-A", "X-B"); got != "?" {
		t.Errorf("got %q, want %q", got, "?")
	}
}

func TestNewEncoder(t *testing.T) {
	for _, format := range []string{"flac", "wav"} {
		t.Run(format, func(t *testing.T) {
			enc, err := newEncoder(format)
			if err != nil {
				t.Fatalf("newEncoder(%q): %v", format, err)
			}
			if enc == nil {
				t.Fatalf("newEncoder(%q) returned nil", format)
			}
		})
	}
	t.Run("unknown", func(t *testing.T) {
		if _, err := newEncoder("ogg"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error without an API key")
	}
	r, err := New("gsk-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Name() != "groq" {
		t.Errorf("Name = %q, want groq", r.Name())
	}
}

func TestBatchSessionFeedAndClose(t *testing.T) {
	var gotFormat string
	fakeFn := func(audio []byte, format string) (*Result, error) {
		gotFormat = format
		return &Result{
			Text:    "hello world",
			Metrics: &NetworkMetrics{TTFB: 10 * time.Millisecond},
		}, nil
	}

	cfg := SessionConfig{Format: "flac"}
	bs, err := newBatchSession(cfg, fakeFn)
	if err != nil {
		t.Fatalf("newBatchSession: %v", err)
	}

	nSamples := encoder.BlockSize + encoder.BlockSize/2
	pcm := make([]byte, nSamples*2)
	for i := range nSamples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(i%1000))
	}

	bs.Feed(pcm)

	result, err := bs.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if result.Text != "hello world" {
		t.Errorf("Text = %q, want %q", result.Text, "hello world")
	}
	if !result.HasText {
		t.Error("HasText should be true")
	}
	if gotFormat != "flac" {
		t.Errorf("format = %q, want flac", gotFormat)
	}
	if result.Batch == nil {
		t.Fatal("Batch should be non-nil")
	}
	if result.Batch.AudioLengthS <= 0 {
		t.Error("AudioLengthS should be positive")
	}
}

func TestBatchSessionNoSpeech(t *testing.T) {
	fakeFn := func(audio []byte, format string) (*Result, error) {
		return &Result{Text: "  ", Metrics: &NetworkMetrics{}}, nil
	}

	bs, err := newBatchSession(SessionConfig{Format: "wav"}, fakeFn)
	if err != nil {
		t.Fatalf("newBatchSession: %v", err)
	}
	bs.Feed(make([]byte, 2048))

	result, err := bs.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !result.NoSpeech {
		t.Error("expected NoSpeech for whitespace-only text")
	}
	if result.HasText {
		t.Error("HasText should be false")
	}
}

func TestFakeScript(t *testing.T) {
	f := NewFake("ghost", "what time is it")

	for i, want := range []string{"ghost", "what time is it", ""} {
		s, err := f.NewSession(context.Background(), SessionConfig{Format: "flac"})
		if err != nil {
			t.Fatalf("NewSession %d: %v", i, err)
		}
		r, err := s.Close()
		if err != nil {
			t.Fatalf("Close %d: %v", i, err)
		}
		if r.Text != want {
			t.Errorf("session %d Text = %q, want %q", i, r.Text, want)
		}
	}
}

func TestFakePush(t *testing.T) {
	f := NewFake()
	f.Push("hello")

	s, _ := f.NewSession(context.Background(), SessionConfig{})
	r, err := s.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if r.Text != "hello" {
		t.Errorf("Text = %q, want hello", r.Text)
	}
}

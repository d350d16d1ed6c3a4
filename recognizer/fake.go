package recognizer

import (
	"context"
	"fmt"
	"sync"
)

// FakeRecognizer returns scripted texts, one per session, in order. Once
// the script runs out every session hears silence. Used by unit tests and
// the headless harness to walk the assistant through a conversation
// without touching the network.
type FakeRecognizer struct {
	mu    sync.Mutex
	texts []string
	next  int
	err   error
	lang  string
}

func NewFake(texts ...string) *FakeRecognizer {
	return &FakeRecognizer{texts: texts}
}

func NewFakeError(err error) *FakeRecognizer {
	return &FakeRecognizer{err: err}
}

func (f *FakeRecognizer) Name() string            { return "fake" }
func (f *FakeRecognizer) SetLanguage(lang string) { f.lang = lang }
func (f *FakeRecognizer) GetLanguage() string     { return f.lang }

// Push appends another scripted utterance.
func (f *FakeRecognizer) Push(text string) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
}

func (f *FakeRecognizer) NewSession(_ context.Context, _ SessionConfig) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return &fakeSession{err: f.err}, nil
	}
	text := ""
	if f.next < len(f.texts) {
		text = f.texts[f.next]
		f.next++
	}
	return &fakeSession{text: text}, nil
}

type fakeSession struct {
	text string
	err  error
}

func (s *fakeSession) Feed([]byte) {}

func (s *fakeSession) Close() (SessionResult, error) {
	if s.err != nil {
		return SessionResult{}, fmt.Errorf("fake recognizer error: %w", s.err)
	}
	r := SessionResult{
		Text:     s.text,
		HasText:  s.text != "",
		NoSpeech: s.text == "",
		Batch: &BatchStats{
			AudioLengthS: 1.0,
			TotalTimeMs:  10,
		},
		Metrics: []string{"total: 10ms (fake)"},
	}
	r.captureMemStats()
	return r, nil
}

package speaker

import (
	"context"
	"sync"
)

// FakeSynthesizer records utterances instead of speaking them.
type FakeSynthesizer struct {
	mu     sync.Mutex
	spoken []string
	err    error
}

func NewFake() *FakeSynthesizer {
	return &FakeSynthesizer{}
}

func (f *FakeSynthesizer) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *FakeSynthesizer) Close() {}

// Spoken returns everything spoken so far.
func (f *FakeSynthesizer) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.spoken))
	copy(out, f.spoken)
	return out
}

// Last returns the most recent utterance, or "".
func (f *FakeSynthesizer) Last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.spoken) == 0 {
		return ""
	}
	return f.spoken[len(f.spoken)-1]
}

// Fail makes every subsequent Speak return err.
func (f *FakeSynthesizer) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

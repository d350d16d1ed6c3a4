// Package speaker turns assistant replies into audible speech using the
// Edge neural TTS service and the local audio output.
package speaker

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/23578aniket/Ghost/audio"
	"github.com/23578aniket/Ghost/log"
)

type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Close()
}

type Speaker struct {
	voice string
	actx  audio.Context
	fetch func(ctx context.Context, voice, text string) ([]byte, error)

	mu     sync.Mutex
	player audio.Player
}

// New builds a speaker for the given voice, e.g. "en-US-GuyNeural". The
// playback stream opens lazily on the first utterance.
func New(actx audio.Context, voice string) *Speaker {
	return &Speaker{voice: voice, actx: actx, fetch: fetchAudio}
}

// Speak synthesizes text and blocks until playback drains.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	start := time.Now()
	pcm, err := s.fetch(ctx, s.voice, text)
	if err != nil {
		return err
	}
	if len(pcm) == 0 {
		return errors.New("synthesis returned no audio")
	}

	player, err := s.playerFor()
	if err != nil {
		return err
	}
	samples := toSamples(pcm)
	if err := player.Play(samples); err != nil {
		return err
	}

	durS := float64(len(samples)) / float64(SampleRate)
	log.Synthesis(len(text), durS, float64(time.Since(start).Milliseconds()))
	return nil
}

func (s *Speaker) playerFor() (audio.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		p, err := s.actx.NewPlayer(SampleRate)
		if err != nil {
			return nil, err
		}
		s.player = p
	}
	return s.player, nil
}

func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
}

func toSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

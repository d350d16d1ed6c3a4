package audio

import (
	"os"
	"sync"
	"time"

	"github.com/23578aniket/Ghost/encoder"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
)

// FakeContext stands in for the platform audio backend. Captures it
// hands out replay a WAV file instead of reading a microphone.
type FakeContext struct {
	pcm      []byte
	realtime bool
	player   *FakePlayer
}

func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, err
	}
	if len(data) > WAVHeaderSize {
		data = data[WAVHeaderSize:]
	}
	return &FakeContext{pcm: data, realtime: realtime, player: &FakePlayer{}}, nil
}

// NewSilentFakeContext returns a fake that only ever produces silence.
func NewSilentFakeContext(realtime bool) *FakeContext {
	return &FakeContext{realtime: realtime, player: &FakePlayer{}}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm, realtime: f.realtime, audioDone: make(chan struct{})}, nil
}

func (f *FakeContext) NewPlayer(_ uint32) (Player, error) {
	return f.player, nil
}

// LastPlayer exposes the fake player so tests can inspect what was spoken.
func (f *FakeContext) LastPlayer() *FakePlayer { return f.player }

// FakeCapture replays its PCM from the start on every Start call. In
// realtime mode chunks arrive at the microphone's natural pace followed
// by silence; otherwise the whole clip lands synchronously and silence
// ticks each millisecond after.
type FakeCapture struct {
	pcm       []byte
	realtime  bool
	audioDone chan struct{}

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
}

// AudioDone is closed once the clip has fully played through the
// callback for the current window.
func (f *FakeCapture) AudioDone() <-chan struct{} { return f.audioDone }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) feedChunk(cb DataCallback, pos, chunkBytes int) int {
	end := min(pos+chunkBytes, len(f.pcm))
	chunk := make([]byte, end-pos)
	copy(chunk, f.pcm[pos:end])
	cb(chunk, uint32(len(chunk)/fakeBytesPerFrame))
	return end
}

func (f *FakeCapture) Start() error {
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})
	// audioDone is NOT recreated here; a caller may already be waiting
	// on it. Stop resets it for the next window.

	if f.realtime {
		go f.feedPaced()
	} else {
		f.feedInstant()
		go f.feedSilence()
	}
	return nil
}

// feedInstant delivers the whole clip before Start returns.
func (f *FakeCapture) feedInstant() {
	chunkBytes := fakeFrameSize * fakeBytesPerFrame
	if cb := f.callback(); cb != nil {
		for pos := 0; pos < len(f.pcm); {
			pos = f.feedChunk(cb, pos, chunkBytes)
		}
	}
	close(f.audioDone)
}

// feedSilence keeps the callback ticking with empty frames until Stop.
func (f *FakeCapture) feedSilence() {
	defer close(f.feedDone)
	silence := make([]byte, fakeFrameSize*fakeBytesPerFrame)
	for {
		select {
		case <-f.stopCh:
			return
		case <-time.After(time.Millisecond):
		}
		if cb := f.callback(); cb != nil {
			cb(silence, fakeFrameSize)
		}
	}
}

// feedPaced delivers the clip at the rate a real device would, then
// switches to silence.
func (f *FakeCapture) feedPaced() {
	defer close(f.feedDone)
	chunkBytes := fakeFrameSize * fakeBytesPerFrame
	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(encoder.SampleRate)
	silence := make([]byte, chunkBytes)
	pos := 0
	audioFinished := false

	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		cb := f.callback()
		if cb == nil {
			time.Sleep(time.Millisecond)
			continue
		}

		if pos < len(f.pcm) {
			pos = f.feedChunk(cb, pos, chunkBytes)
		} else {
			if !audioFinished {
				audioFinished = true
				close(f.audioDone)
			}
			cb(silence, fakeFrameSize)
		}

		select {
		case <-f.stopCh:
			return
		case <-time.After(interval):
		}
	}
}

func (f *FakeCapture) Stop() {
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	if f.feedDone != nil {
		<-f.feedDone
	}
	f.audioDone = make(chan struct{}) // reset for replay
}

func (f *FakeCapture) Close() {}

// FakePlayer swallows playback instantly and counts what went through it.
type FakePlayer struct {
	mu         sync.Mutex
	utterances int
	samples    int
}

func (p *FakePlayer) Play(pcm []int16) error {
	p.mu.Lock()
	p.utterances++
	p.samples += len(pcm)
	p.mu.Unlock()
	return nil
}

func (p *FakePlayer) Close() {}

func (p *FakePlayer) Utterances() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.utterances
}

func (p *FakePlayer) Samples() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.samples
}

package main

import (
	"sync"
	"time"

	"github.com/23578aniket/Ghost/audio"
	"github.com/23578aniket/Ghost/encoder"
)

const (
	energyFrameMs    = 20
	energyFrameBytes = encoder.SampleRate * energyFrameMs / 1000 * 2 // 640 bytes
	energyDebounce   = 3 // consecutive loud frames to confirm voice
)

// energyDetector classifies capture audio as speech or silence by RMS level
// against a fixed threshold. Crude next to a real VAD, but it is what the
// assistant's listening windows are calibrated for.
type energyDetector struct {
	threshold float64

	mu            sync.Mutex
	buf           []byte
	voiceDetected bool
	lastVoiceTime time.Time
	speechRun     int
	totalFrames   int
	speechFrames  int
	tickTotal     int
	tickSpeech    int
	level         float64
}

func newEnergyDetector(threshold int) *energyDetector {
	return &energyDetector{threshold: float64(threshold)}
}

func (d *energyDetector) Process(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf = append(d.buf, data...)
	for len(d.buf) >= energyFrameBytes {
		frame := d.buf[:energyFrameBytes]
		d.buf = d.buf[energyFrameBytes:]

		rms := audio.RMS(frame)
		d.level = rms
		d.totalFrames++
		if rms >= d.threshold {
			d.speechFrames++
			d.speechRun++
			if d.voiceDetected {
				d.lastVoiceTime = time.Now()
			} else if d.speechRun >= energyDebounce {
				d.voiceDetected = true
				d.lastVoiceTime = time.Now()
			}
		} else {
			d.speechRun = 0
		}
	}
}

func (d *energyDetector) VoiceDetected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.voiceDetected
}

func (d *energyDetector) LastVoiceTime() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastVoiceTime
}

// Level reports the most recent frame's RMS on the int16 scale.
func (d *energyDetector) Level() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level
}

func (d *energyDetector) Stats() (total, speech int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totalFrames, d.speechFrames
}

const speechThreshold = 0.10 // share of loud frames for a tick to count as speech

// HasSpeechTick reports whether enough frames since the previous call
// cleared the energy threshold. Called once per monitor tick.
func (d *energyDetector) HasSpeechTick() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.totalFrames - d.tickTotal
	s := d.speechFrames - d.tickSpeech
	d.tickTotal, d.tickSpeech = d.totalFrames, d.speechFrames
	if t == 0 {
		return false
	}
	return float64(s)/float64(t) >= speechThreshold
}

func (d *energyDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = d.buf[:0]
	d.voiceDetected = false
	d.lastVoiceTime = time.Time{}
	d.speechRun = 0
	d.level = 0
}

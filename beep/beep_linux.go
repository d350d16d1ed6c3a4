//go:build linux

package beep

import (
	"math"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var (
	startChime []int16
	endChime   []int16
	errorChime []int16
	soundOnce  sync.Once
)

func initSound() {
	startChime = interleave(tone(startFreq, 0.2, startVolume, startDecay))
	endChime = interleave(tone(endFreq, 0.2, endVolume, endDecay))

	// Error is the same tone twice with a short gap.
	blip := tone(errorFreq, 0.08, errorVolume, errorDecay)
	gap := make([]float64, int(float64(sampleRate)*0.05))
	errorChime = interleave(append(append(append([]float64{}, blip...), gap...), blip...))
}

// tone renders a decaying sine in mono on the [-1, 1] scale.
func tone(freq, duration, volume, decay float64) []float64 {
	n := int(float64(sampleRate) * duration)
	mono := make([]float64, n)
	for i := range mono {
		t := float64(i) / float64(sampleRate)
		mono[i] = math.Sin(2*math.Pi*freq*t) * volume * math.Exp(-t*decay)
	}
	return mono
}

// interleave converts mono float samples to the stereo int16 layout the
// playback stream expects.
func interleave(mono []float64) []int16 {
	out := make([]int16, len(mono)*2)
	for i, v := range mono {
		s := int16(v * 32767)
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}

// playChime opens a short-lived PulseAudio stream per chime. Chimes are
// rare enough that holding a client open is not worth surviving a
// daemon restart for.
func playChime(samples []int16) {
	if disabled || len(samples) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}

func Init() {
	soundOnce.Do(initSound)
}

func PlayStart() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go playChime(startChime)
}

func PlayEnd() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go playChime(endChime)
}

func PlayError() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go playChime(errorChime)
}

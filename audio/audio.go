package audio

import (
	"encoding/binary"
	"math"
	"strings"
)

const WAVHeaderSize = 44

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RMS returns the root-mean-square level of little-endian 16-bit mono PCM
// on the int16 scale. The listening loop compares this against the
// configured energy threshold to separate speech from room noise.
func RMS(data []byte) float64 {
	n := len(data) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(data[i*2:])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	NewPlayer(sampleRate uint32) (Player, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

// Player renders mono 16-bit PCM at a fixed sample rate. Play blocks until
// the samples have drained so consecutive spoken lines come out in order.
type Player interface {
	Play(pcm []int16) error
	Close()
}

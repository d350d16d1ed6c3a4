//go:build linux

package audio

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sources, err := p.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("pulse list sources: %w", err)
	}
	var devices []DeviceInfo
	for _, s := range sources {
		devices = append(devices, DeviceInfo{
			ID:   s.ID(),
			Name: s.Name(),
		})
	}
	return devices, nil
}

func (p *pulseContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	return &pulseCapture{
		client: p.client,
		device: device,
		config: config,
	}, nil
}

func (p *pulseContext) NewPlayer(sampleRate uint32) (Player, error) {
	return &pulsePlayer{client: p.client, rate: sampleRate}, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

// captureGain lifts PulseAudio input toward full scale; sources often
// sit low and the energy gate needs honest levels.
const captureGain = 8

func amplifySample(s int16) int16 {
	v := int32(s) * captureGain
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

type pulseCapture struct {
	client   *pulse.Client
	device   *DeviceInfo
	config   CaptureConfig
	callback atomic.Pointer[DataCallback]

	stream *pulse.RecordStream
	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

// deliver converts one record buffer to little-endian bytes with gain
// applied and hands it to the registered callback.
func (c *pulseCapture) deliver(buf []int16) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	cb := c.callback.Load()
	if cb == nil {
		return len(buf), nil
	}
	data := make([]byte, len(buf)*2)
	for i, s := range buf {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(amplifySample(s)))
	}
	(*cb)(data, uint32(len(buf)))
	return len(buf), nil
}

func (c *pulseCapture) recordOptions() []pulse.RecordOption {
	opts := []pulse.RecordOption{
		pulse.RecordMono,
		pulse.RecordSampleRate(int(c.config.SampleRate)),
		pulse.RecordLatency(0.05),
		pulse.RecordRawOption(func(r *proto.CreateRecordStream) {
			vol := uint32(proto.VolumeNorm) * 3
			r.ChannelVolumes = proto.ChannelVolumes{vol}
		}),
	}
	if c.device != nil {
		source, err := c.client.SourceByID(c.device.ID)
		if err == nil && source != nil {
			opts = append(opts, pulse.RecordSource(source))
		}
	}
	return opts
}

func (c *pulseCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stream, err := c.client.NewRecord(pulse.Int16Writer(c.deliver), c.recordOptions()...)
	if err != nil {
		return fmt.Errorf("pulse record: %w", err)
	}

	c.stream = stream
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		stream.Start()
		<-c.stop
		stream.Stop()
		stream.Close()
	}()

	return nil
}

func (c *pulseCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		select {
		case <-c.stop:
		default:
			close(c.stop)
		}
		<-c.done
	}
}

func (c *pulseCapture) Close() {
	c.Stop()
}

func (c *pulseCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *pulseCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *pulseCapture) DeviceName() string {
	if c.device != nil {
		return c.device.Name
	}
	return "system default"
}

// pulsePlayer opens a short-lived playback stream per utterance. Synthesized
// speech arrives in one buffer, so stream setup cost is irrelevant next to
// the seconds of audio it carries.
type pulsePlayer struct {
	client *pulse.Client
	rate   uint32
	mu     sync.Mutex
}

func (p *pulsePlayer) Play(pcm []int16) error {
	if len(pcm) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(pcm) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, pcm[pos:])
		pos += n
		return n, nil
	})

	stream, err := p.client.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(int(p.rate)),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		return fmt.Errorf("pulse playback: %w", err)
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
	return nil
}

func (p *pulsePlayer) Close() {}

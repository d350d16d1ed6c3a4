//go:build !linux

package audio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	c := &malgoCapture{name: "default"}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Capture.DeviceID = devID.Pointer()
		c.name = device.Name
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			cb := c.callback.Load()
			if cb != nil {
				(*cb)(data, frameCount)
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}

	c.device = dev
	return c, nil
}

func (m *malgoContext) NewPlayer(sampleRate uint32) (Player, error) {
	p := &malgoPlayer{}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: p.fill,
	}

	dev, err := malgo.InitDevice(m.ctx.Context, config, callbacks)
	if err != nil {
		return nil, err
	}

	p.device = dev
	return p, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoCapture struct {
	device   *malgo.Device
	name     string
	callback atomic.Pointer[DataCallback]
}

func (c *malgoCapture) Start() error {
	return c.device.Start()
}

func (c *malgoCapture) Stop() {
	c.device.Stop()
}

func (c *malgoCapture) Close() {
	c.device.Uninit()
}

func (c *malgoCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *malgoCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *malgoCapture) DeviceName() string {
	return c.name
}

// malgoPlayer feeds queued samples from the device callback. The samples
// pointer doubles as the playing flag; the callback clears it on drain.
type malgoPlayer struct {
	device *malgo.Device

	mu      sync.Mutex
	samples atomic.Pointer[[]byte]
	pos     atomic.Uint32
}

func (p *malgoPlayer) fill(out, _ []byte, frameCount uint32) {
	samples := p.samples.Load()
	if samples == nil {
		for i := range out {
			out[i] = 0
		}
		return
	}

	pos := p.pos.Load()
	total := uint32(len(*samples))
	want := frameCount * 2
	remaining := total - pos

	if remaining == 0 {
		p.samples.Store(nil)
		for i := range out {
			out[i] = 0
		}
		return
	}

	if want > remaining {
		want = remaining
	}
	copy(out[:want], (*samples)[pos:pos+want])
	p.pos.Store(pos + want)

	for i := want; i < frameCount*2; i++ {
		out[i] = 0
	}
}

func (p *malgoPlayer) Play(pcm []int16) error {
	if len(pcm) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}

	p.pos.Store(0)
	p.samples.Store(&buf)

	if err := p.device.Start(); err != nil {
		p.samples.Store(nil)
		return err
	}

	for p.samples.Load() != nil {
		time.Sleep(10 * time.Millisecond)
	}
	p.device.Stop()
	return nil
}

func (p *malgoPlayer) Close() {
	p.device.Uninit()
}

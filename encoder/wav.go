package encoder

import (
	"bytes"
	"encoding/binary"
	"sync"
	"time"
)

// WAVEncoder buffers PCM and prepends a RIFF header on Close. Used for
// diagnostics dumps; the recognizer upload path prefers FLAC.
type WAVEncoder struct {
	pcm         bytes.Buffer
	out         []byte
	totalFrames uint64
	encodeTime  time.Duration
	mu          sync.Mutex
}

func NewWAV() (*WAVEncoder, error) {
	return &WAVEncoder{}, nil
}

func (e *WAVEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range block {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		e.pcm.Write(b[:])
	}
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WAVEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.out = FromPCM(e.pcm.Bytes(), SampleRate, Channels)
	return nil
}

func (e *WAVEncoder) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out
}

func (e *WAVEncoder) TotalFrames() uint64 {
	return e.totalFrames
}

func (e *WAVEncoder) AddEncodeTime(d time.Duration) {
	e.mu.Lock()
	e.encodeTime += d
	e.mu.Unlock()
}

func (e *WAVEncoder) EncodeTime() time.Duration {
	return e.encodeTime
}

// FromPCM wraps raw little-endian 16-bit PCM in a canonical 44-byte
// RIFF/WAVE header.
func FromPCM(pcm []byte, sampleRate, channels int) []byte {
	dataLen := len(pcm)
	bytesPerSample := BitsPerSample / 8
	byteRate := sampleRate * channels * bytesPerSample

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	binary.Write(&buf, binary.LittleEndian, uint16(BitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)
	return buf.Bytes()
}

package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func pcmOf(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS(pcmOf(0, 0, 0, 0)); got != 0 {
		t.Errorf("RMS(silence) = %v, want 0", got)
	}

	// A constant signal's RMS is its amplitude.
	if got := RMS(pcmOf(1000, 1000, 1000, 1000)); math.Abs(got-1000) > 1e-9 {
		t.Errorf("RMS(constant 1000) = %v, want 1000", got)
	}

	// Sign must not matter.
	if got := RMS(pcmOf(-500, 500, -500, 500)); math.Abs(got-500) > 1e-9 {
		t.Errorf("RMS(alternating 500) = %v, want 500", got)
	}
}

func TestIsBluetooth(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AirPods Pro", true},
		{"Sony WH-1000XM4", true},
		{"Jabra Elite 75t", true},
		{"Galaxy Buds2", true},
		{"My Bluetooth Headset", true},
		{"Built-in Microphone", false},
		{"USB PnP Sound Device", false},
		{"HDA Intel PCH", false},
	}
	for _, tt := range tests {
		if got := IsBluetooth(tt.name); got != tt.want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

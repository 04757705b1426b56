package audio

import (
	"testing"
)

func TestDecodePCM16(t *testing.T) {
	// Little-endian int16: 0x0100 = 256, 0x8000 = -32768, 0x7FFF = 32767
	pcm := []byte{0x00, 0x01, 0x00, 0x80, 0xFF, 0x7F, 0x00, 0x00}
	samples := DecodePCM16(pcm)

	want := []float64{256.0 / 32768.0, -1.0, 32767.0 / 32768.0, 0}
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i, w := range want {
		if samples[i] != w {
			t.Errorf("sample %d: expected %v, got %v", i, w, samples[i])
		}
	}
}

func TestDecodePCM16OddLength(t *testing.T) {
	// A trailing odd byte is dropped rather than failing.
	pcm := []byte{0x00, 0x01, 0xAB}
	samples := DecodePCM16(pcm)

	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	if samples[0] != 256.0/32768.0 {
		t.Errorf("expected %v, got %v", 256.0/32768.0, samples[0])
	}
}

func TestDecodePCM16Empty(t *testing.T) {
	if got := DecodePCM16(nil); len(got) != 0 {
		t.Errorf("expected no samples, got %d", len(got))
	}
}

func TestEncodeDecodePCM16RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 12345, -12345, 32767, -32768}
	decoded := DecodePCM16(EncodePCM16(samples))

	for i, s := range samples {
		want := float64(s) / 32768.0
		if decoded[i] != want {
			t.Errorf("sample %d: expected %v, got %v", i, want, decoded[i])
		}
	}
}

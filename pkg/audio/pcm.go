// Package audio provides the codec primitives shared by the onset detector
// and the telephony transport glue.
//
// pcm.go implements 16-bit linear PCM decoding for analysis.

package audio

import "encoding/binary"

// DecodePCM16 converts little-endian signed 16-bit PCM bytes to normalized
// float samples in [-1, 1). Every 2 bytes form one sample; a trailing odd
// byte is ignored.
func DecodePCM16(pcm []byte) []float64 {
	n := len(pcm) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = float64(s) / 32768.0
	}
	return samples
}

// EncodePCM16 converts 16-bit signed PCM samples to little-endian bytes.
func EncodePCM16(samples []int16) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return pcm
}

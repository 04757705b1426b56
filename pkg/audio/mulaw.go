// Package audio provides the codec primitives shared by the onset detector
// and the telephony transport glue.
//
// mulaw.go implements μ-law (G.711) decoding and encoding. μ-law is the
// standard 8-bit logarithmic encoding for telephone audio in North America
// and Japan, and is what Twilio, Vonage and AWS Connect media streams carry.
//
// Features:
//   - μ-law to Linear PCM (16-bit signed) conversion
//   - μ-law to normalized float conversion for signal analysis
//   - Linear PCM to μ-law conversion (used to synthesize test audio)
//   - Lookup tables computed once at package init, O(1) per sample
//
// Reference: ITU-T G.711 specification

package audio

// MuLaw codec constants
const (
	MuLawBias      = 0x84  // Bias for linear code
	MuLawClip      = 32635 // Maximum linear value before encoding
	MuLawSegShift  = 4
	MuLawSegMask   = 0x70
	MuLawQuantMask = 0x0f
)

// muLawDecodeTable maps each μ-law byte to its 16-bit signed PCM value.
// muLawFloatTable holds the same samples normalized into [-1, 1).
var (
	muLawDecodeTable [256]int16
	muLawFloatTable  [256]float64
)

func init() {
	for i := 0; i < 256; i++ {
		ulaw := ^i & 0xFF
		sign := int32(1)
		if ulaw&0x80 != 0 {
			sign = -1
		}
		magnitude := int32((ulaw&MuLawQuantMask)<<3) + MuLawBias
		magnitude <<= uint(ulaw&MuLawSegMask) >> MuLawSegShift
		pcm := sign * (magnitude - MuLawBias)
		muLawDecodeTable[i] = int16(pcm)
		muLawFloatTable[i] = float64(pcm) / 32768.0
	}
}

// muLawSegmentTable is a segment end lookup for μ-law encoding.
var muLawSegmentTable = [8]int16{0xFF, 0x1FF, 0x3FF, 0x7FF, 0xFFF, 0x1FFF, 0x3FFF, 0x7FFF}

// MuLawDecode converts a single μ-law byte to a 16-bit signed PCM sample.
func MuLawDecode(mulaw byte) int16 {
	return muLawDecodeTable[mulaw]
}

// MuLawDecodeFloat converts a single μ-law byte to a normalized float sample.
func MuLawDecodeFloat(mulaw byte) float64 {
	return muLawFloatTable[mulaw]
}

// MuLawEncode converts a 16-bit signed PCM sample to μ-law.
func MuLawEncode(pcm int16) byte {
	// Determine sign and get magnitude
	sign := (pcm >> 8) & 0x80
	if sign != 0 {
		pcm = -pcm
	}
	if pcm > MuLawClip {
		pcm = MuLawClip
	}
	pcm = pcm + MuLawBias

	// Find segment
	segment := 7
	for i := 0; i < 8; i++ {
		if pcm <= muLawSegmentTable[i] {
			segment = i
			break
		}
	}

	// Combine sign, segment, and quantization
	return byte(^(sign | (int16(segment) << MuLawSegShift) | ((pcm >> (segment + 3)) & MuLawQuantMask)))
}

// DecodeMuLaw converts μ-law encoded bytes to normalized float samples.
// One input byte yields one output sample.
func DecodeMuLaw(mulaw []byte) []float64 {
	samples := make([]float64, len(mulaw))
	for i, b := range mulaw {
		samples[i] = muLawFloatTable[b]
	}
	return samples
}

// EncodeMuLaw converts 16-bit signed PCM samples to μ-law encoded bytes.
func EncodeMuLaw(pcm []int16) []byte {
	mulaw := make([]byte, len(pcm))
	for i, s := range pcm {
		mulaw[i] = MuLawEncode(s)
	}
	return mulaw
}

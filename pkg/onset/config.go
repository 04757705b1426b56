package onset

import "fmt"

// Encoding identifies the wire format of the audio handed to ProcessAudio.
// The closed set avoids per-call string dispatch: the decoder is bound once
// at construction.
type Encoding int

const (
	// EncodingMuLaw is 8-bit μ-law (G.711), one byte per sample.
	EncodingMuLaw Encoding = iota
	// EncodingPCM16 is 16-bit signed little-endian linear PCM.
	EncodingPCM16
)

// String returns the wire name of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingMuLaw:
		return "mulaw"
	case EncodingPCM16:
		return "pcm16"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding maps an encoding name ("mulaw" or "pcm16") to its variant.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "mulaw":
		return EncodingMuLaw, nil
	case "pcm16":
		return EncodingPCM16, nil
	default:
		return 0, fmt.Errorf("unsupported encoding: %q", s)
	}
}

// Detection parameter defaults. A frame is 20ms; onset is confirmed after
// DefaultOnsetFrames consecutive frames score above the noise floor by
// DefaultEnterThreshold, and ends once a frame scores within
// DefaultExitThreshold of the floor.
const (
	frameDurationMs = 20

	DefaultOnsetFrames    = 3
	DefaultEnterThreshold = 0.15
	DefaultExitThreshold  = 0.05

	// noiseHistoryCap bounds the adaptive floor history to ~1s of frames.
	noiseHistoryCap = 50
	// minHistory is the number of recorded scores required before the
	// state machine performs any transition.
	minHistory = 10
)

// Config holds configuration for creating an onset detector.
// It is immutable after construction; Reset never touches it.
type Config struct {
	// SampleRate of the input audio in Hz. Must be positive.
	SampleRate int

	// Encoding of the raw buffers handed to ProcessAudio.
	Encoding Encoding

	// OnsetFrames is the minimum number of consecutive qualifying frames
	// before onset is confirmed. Defaults to DefaultOnsetFrames.
	OnsetFrames int

	// EnterThreshold is the score margin above the noise floor required to
	// qualify a frame while not speaking. Defaults to DefaultEnterThreshold.
	EnterThreshold float64

	// ExitThreshold is the score margin above the noise floor below which
	// speech is considered ended. Defaults to DefaultExitThreshold.
	ExitThreshold float64
}

// FrameSize returns the analysis frame length in samples (20ms of audio).
func (c Config) FrameSize() int {
	return c.SampleRate * frameDurationMs / 1000
}

// IsValid validates the detector configuration.
func (c Config) IsValid() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: must be positive, got %d", c.SampleRate)
	}

	if c.Encoding != EncodingMuLaw && c.Encoding != EncodingPCM16 {
		return fmt.Errorf("unsupported encoding: %v", c.Encoding)
	}

	// The Hann window divides by frameSize-1, and spectral analysis needs
	// a handful of bins to be meaningful. Realistic sample rates give
	// frame sizes well past this bound.
	if c.FrameSize() < 2 {
		return fmt.Errorf("invalid SampleRate: %d yields a %d-sample frame, need at least 2", c.SampleRate, c.FrameSize())
	}

	if c.OnsetFrames < 0 {
		return fmt.Errorf("invalid OnsetFrames: must not be negative, got %d", c.OnsetFrames)
	}

	if c.EnterThreshold < 0 || c.ExitThreshold < 0 {
		return fmt.Errorf("invalid thresholds: must not be negative")
	}

	if c.EnterThreshold != 0 && c.ExitThreshold >= c.EnterThreshold {
		return fmt.Errorf("invalid thresholds: ExitThreshold (%v) must be below EnterThreshold (%v)", c.ExitThreshold, c.EnterThreshold)
	}

	return nil
}

// withDefaults returns a copy of the config with zero-valued detection
// parameters replaced by their defaults.
func (c Config) withDefaults() Config {
	if c.OnsetFrames == 0 {
		c.OnsetFrames = DefaultOnsetFrames
	}
	if c.EnterThreshold == 0 {
		c.EnterThreshold = DefaultEnterThreshold
	}
	if c.ExitThreshold == 0 {
		c.ExitThreshold = DefaultExitThreshold
	}
	return c
}

// TelephonyConfig returns the configuration for telephony audio
// (8kHz μ-law). Works with Twilio, Vonage, AWS Connect and SIP providers.
func TelephonyConfig() Config {
	return Config{
		SampleRate: 8000,
		Encoding:   EncodingMuLaw,
	}
}

// HDConfig returns the configuration for high-definition PCM16 audio at the
// given rate. A rate of 0 defaults to 16kHz. Works with WebRTC, local
// microphones and other high-quality streams.
func HDConfig(sampleRate int) Config {
	if sampleRate == 0 {
		sampleRate = 16000
	}
	return Config{
		SampleRate: sampleRate,
		Encoding:   EncodingPCM16,
	}
}

// BroadcastConfig returns the configuration for broadcast-quality audio
// (22.05kHz PCM16), e.g. radio streams or podcast processing.
func BroadcastConfig() Config {
	return Config{
		SampleRate: 22050,
		Encoding:   EncodingPCM16,
	}
}

// Package onset detects the start of human speech in a continuous stream
// of short audio frames, so a voice agent can cut off synthesized playback
// the moment the user begins talking (barge-in).
//
// The detector consumes raw encoded audio (μ-law or PCM16), analyzes one
// 20ms frame per call, and answers a single question: did speech just
// start? Detection is adaptive: the noise floor is the median of a bounded
// history of recent frame scores, and a two-threshold hysteresis state
// machine with a minimum consecutive-frame requirement guards against
// flicker. Processing is strictly causal (no lookahead) and bounded per
// call, holding well under the frame's real-time duration.
//
// Usage:
//
//	detector, err := onset.NewDetector(onset.TelephonyConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range audioChunks {
//	    if detector.ProcessAudio(chunk) {
//	        // user started speaking: stop TTS playback
//	    }
//	}
package onset

import (
	"fmt"

	"github.com/speechhook/speechhook/pkg/audio"
)

// Detector detects speech onset in a single audio stream. Each instance
// owns mutable per-stream state and must be driven by one goroutine at a
// time; independent streams need independent instances.
type Detector struct {
	cfg       Config
	frameSize int

	// decode is bound once at construction; ProcessAudio never branches on
	// the encoding.
	decode func([]byte) []float64

	pre      *preprocessor
	features *featureExtractor
	machine  *stateMachine
}

// NewDetector creates a detector for one audio stream. It fails for an
// unsupported encoding or a non-positive sample rate; detection parameters
// left at zero take their documented defaults.
func NewDetector(cfg Config) (*Detector, error) {
	cfg = cfg.withDefaults()
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var decode func([]byte) []float64
	switch cfg.Encoding {
	case EncodingMuLaw:
		decode = audio.DecodeMuLaw
	case EncodingPCM16:
		decode = audio.DecodePCM16
	}

	frameSize := cfg.FrameSize()

	return &Detector{
		cfg:       cfg,
		frameSize: frameSize,
		decode:    decode,
		pre:       newPreprocessor(frameSize),
		features:  newFeatureExtractor(frameSize, cfg.SampleRate),
		machine:   newStateMachine(cfg),
	}, nil
}

// ProcessAudio analyzes one frame of raw encoded audio and reports whether
// speech onset was detected on this call. It returns true exactly once per
// qualifying transition into speech.
//
// If the buffer decodes to fewer samples than one frame, the call returns
// false and no state is mutated. Samples beyond the first frame are
// discarded for this call; the detector keeps no inter-call sample buffer,
// so callers should deliver one frame (20ms) per call. Telephony media
// streams such as Twilio's already frame audio this way.
func (d *Detector) ProcessAudio(buf []byte) bool {
	samples := d.decode(buf)
	if len(samples) < d.frameSize {
		return false
	}

	frame := samples[:d.frameSize]
	d.pre.apply(frame)
	score := d.features.score(frame)
	return d.machine.step(score)
}

// Reset clears all per-stream state: speaking flag, consecutive counter,
// noise history, cached spectrum and the pre-emphasis carry. Configuration
// is untouched. Call it when reusing the detector for a new stream.
func (d *Detector) Reset() {
	d.pre.reset()
	d.features.reset()
	d.machine.reset()
}

// IsSpeaking reports whether the detector currently considers the stream
// to contain speech.
func (d *Detector) IsSpeaking() bool {
	return d.machine.speaking
}

// ConsecutiveSpeech returns the running count of consecutive frames whose
// score cleared the enter margin while not speaking.
func (d *Detector) ConsecutiveSpeech() int {
	return d.machine.consecutive
}

// NoiseHistorySize returns the number of scores currently recorded for the
// adaptive noise floor, at most 50.
func (d *Detector) NoiseHistorySize() int {
	return d.machine.history.len()
}

// Config returns the detector's immutable configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Ensure Detector implements DetectorInterface at compile time.
var _ DetectorInterface = (*Detector)(nil)

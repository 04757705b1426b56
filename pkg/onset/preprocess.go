package onset

import "math"

// preEmphasis is the first-order high-pass coefficient applied before
// spectral analysis. Boosting the higher frequencies flattens the spectral
// tilt of speech so the band-energy ratio is not dominated by low-frequency
// rumble.
const preEmphasis = 0.95

// preprocessor applies pre-emphasis and a Hann window to one frame in
// place. The pre-emphasis filter is continuous across frame boundaries: the
// last unfiltered sample of each frame carries over as the reference for
// the first sample of the next.
type preprocessor struct {
	window []float64
	carry  float64
}

// newPreprocessor precomputes the Hann window for frames of frameSize
// samples. frameSize must be >= 2; Config.IsValid enforces this.
func newPreprocessor(frameSize int) *preprocessor {
	window := make([]float64, frameSize)
	for n := range window {
		window[n] = 0.5 * (1 - math.Cos(2*math.Pi*float64(n)/float64(frameSize-1)))
	}
	return &preprocessor{window: window}
}

// apply filters and windows the frame in place. The frame must be owned by
// the caller for the duration of the call; it is mutated. Each output
// sample is computed against the original, unfiltered previous sample.
// An empty frame is a no-op and leaves the carry unchanged.
func (p *preprocessor) apply(frame []float64) {
	if len(frame) == 0 {
		return
	}

	prev := p.carry
	for i, x := range frame {
		frame[i] = x - preEmphasis*prev
		prev = x
	}
	p.carry = prev

	for i := range frame {
		frame[i] *= p.window[i]
	}
}

// reset clears the cross-frame carry, as if no audio had been seen.
func (p *preprocessor) reset() {
	p.carry = 0
}

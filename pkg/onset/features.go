package onset

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Speech band bounds in Hz. Telephone speech concentrates its energy in
// this range, so the fraction of spectral power inside it separates speech
// from broadband noise and hum.
const (
	speechBandLowHz  = 300
	speechBandHighHz = 3400
)

// minAnalysisFrame is the shortest frame worth transforming; anything
// shorter scores 0 without touching the spectrum cache.
const minAnalysisFrame = 16

// silenceEnergy is the total spectral power below which a frame is treated
// as silence.
const silenceEnergy = 1e-10

// featureExtractor turns one preprocessed frame into a scalar speech
// activity score. It keeps the previous frame's power spectrum so spectral
// flux (frame-to-frame energy increase, a classic onset cue) can be
// computed without lookahead.
type featureExtractor struct {
	fft *fourier.FFT

	// loBin..hiBin (inclusive) are the spectrum bins inside the speech band.
	loBin, hiBin int

	// spectrum and prevSpectrum are swapped each frame to avoid per-call
	// allocation. prevValid is false until one frame has been analyzed.
	coeffs       []complex128
	spectrum     []float64
	prevSpectrum []float64
	prevValid    bool
}

func newFeatureExtractor(frameSize, sampleRate int) *featureExtractor {
	bins := frameSize/2 + 1

	// Bin k covers frequency k*sampleRate/frameSize. Both band edges are
	// inclusive, matching the analysis the thresholds were tuned against.
	lo := (speechBandLowHz*frameSize + sampleRate - 1) / sampleRate
	hi := speechBandHighHz * frameSize / sampleRate
	if hi > bins-1 {
		hi = bins - 1
	}

	return &featureExtractor{
		fft:          fourier.NewFFT(frameSize),
		loBin:        lo,
		hiBin:        hi,
		coeffs:       make([]complex128, bins),
		spectrum:     make([]float64, bins),
		prevSpectrum: make([]float64, bins),
	}
}

// score computes the speech activity score for one preprocessed frame:
//
//	0.6 * speech-band energy ratio
//	0.3 * normalized positive spectral flux
//	0.1 * capped zero-crossing rate
//
// The weighting favors steady speech-band energy, treats a sudden spectral
// increase as a secondary onset cue, and uses ZCR only as a tie-breaker,
// capped so high-ZCR noise cannot dominate.
func (fe *featureExtractor) score(frame []float64) float64 {
	if len(frame) < minAnalysisFrame {
		return 0
	}

	fe.fft.Coefficients(fe.coeffs, frame)
	for i, c := range fe.coeffs {
		fe.spectrum[i] = real(c)*real(c) + imag(c)*imag(c)
	}

	var totalEnergy float64
	for _, p := range fe.spectrum {
		totalEnergy += p
	}
	if totalEnergy < silenceEnergy {
		// Silence still replaces the cached spectrum, so the first loud
		// frame after silence registers its full flux.
		fe.rotate()
		return 0
	}

	var bandEnergy float64
	for k := fe.loBin; k <= fe.hiBin; k++ {
		bandEnergy += fe.spectrum[k]
	}
	bandRatio := bandEnergy / totalEnergy

	var flux float64
	if fe.prevValid {
		for i, p := range fe.spectrum {
			if d := p - fe.prevSpectrum[i]; d > 0 {
				flux += d
			}
		}
	}
	fluxNorm := flux / (flux + 1.0)
	fe.rotate()

	zcr := zeroCrossingRate(frame)

	return 0.6*bandRatio + 0.3*fluxNorm + 0.1*min(1.0, zcr*10)
}

// rotate makes the current spectrum the previous one for the next frame.
func (fe *featureExtractor) rotate() {
	fe.spectrum, fe.prevSpectrum = fe.prevSpectrum, fe.spectrum
	fe.prevValid = true
}

// reset drops the cached spectrum, as for a fresh stream.
func (fe *featureExtractor) reset() {
	fe.prevValid = false
}

// zeroCrossingRate is the fraction of sign changes between consecutive
// samples. Zero counts as its own sign, so touching zero registers as a
// change.
func zeroCrossingRate(frame []float64) float64 {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if sign(frame[i]) != sign(frame[i-1]) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

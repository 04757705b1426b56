package onset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineFrame builds a frame with a tone exactly on FFT bin k for the given
// frame size, so all spectral energy lands in that single bin.
func sineFrame(frameSize, bin int, amplitude float64) []float64 {
	frame := make([]float64, frameSize)
	for i := range frame {
		frame[i] = amplitude * math.Sin(2*math.Pi*float64(bin)*float64(i)/float64(frameSize))
	}
	return frame
}

func TestFeatureExtractorBandBins(t *testing.T) {
	// 8kHz, 160-sample frame: bin width is 50Hz, so 300Hz..3400Hz covers
	// bins 6..68 inclusive.
	fe := newFeatureExtractor(160, 8000)
	assert.Equal(t, 6, fe.loBin)
	assert.Equal(t, 68, fe.hiBin)

	// Band upper edge clamps to Nyquist for low-rate streams.
	fe = newFeatureExtractor(120, 6000)
	assert.LessOrEqual(t, fe.hiBin, 120/2)
}

func TestFeatureExtractorSpeechBandTone(t *testing.T) {
	fe := newFeatureExtractor(160, 8000)

	// 1kHz tone (bin 20) is inside the speech band: the band ratio term
	// dominates and the in-band score is high.
	score := fe.score(sineFrame(160, 20, 0.5))
	assert.Greater(t, score, 0.55, "in-band tone should score near the 0.6 band weight")
}

func TestFeatureExtractorOutOfBandTone(t *testing.T) {
	fe := newFeatureExtractor(160, 8000)

	// 200Hz (bin 4) is below the speech band, so the band ratio term is
	// near zero. Flux is zero on the first frame, leaving only the capped
	// ZCR contribution (at most 0.1).
	score := fe.score(sineFrame(160, 4, 0.5))
	assert.Less(t, score, 0.15, "out-of-band tone should not look like speech")
}

func TestFeatureExtractorSilence(t *testing.T) {
	fe := newFeatureExtractor(160, 8000)

	score := fe.score(make([]float64, 160))
	assert.Zero(t, score)

	// The silent spectrum still replaces the cache, so the next loud frame
	// sees its full flux.
	assert.True(t, fe.prevValid)
}

func TestFeatureExtractorShortFrame(t *testing.T) {
	fe := newFeatureExtractor(160, 8000)

	score := fe.score(make([]float64, 8))
	assert.Zero(t, score)
	assert.False(t, fe.prevValid, "short frames must not touch the spectrum cache")
}

func TestFeatureExtractorSpectralFlux(t *testing.T) {
	fe := newFeatureExtractor(160, 8000)

	quiet := sineFrame(160, 20, 0.01)
	loud := sineFrame(160, 20, 0.8)

	first := fe.score(quiet)

	// Jumping from quiet to loud produces large positive flux; the same
	// loud frame repeated produces none.
	jump := fe.score(loud)
	steady := fe.score(loud)

	require.Greater(t, jump, first)
	assert.Greater(t, jump, steady, "flux should reward the energy increase only")
	assert.InDelta(t, 0.3, jump-steady, 0.05, "flux term contributes up to its 0.3 weight")
}

func TestFeatureExtractorReset(t *testing.T) {
	fe := newFeatureExtractor(160, 8000)
	fe.score(sineFrame(160, 20, 0.5))
	require.True(t, fe.prevValid)

	fe.reset()
	assert.False(t, fe.prevValid)
}

func TestZeroCrossingRate(t *testing.T) {
	// Alternating signs: every adjacent pair crosses.
	alt := []float64{1, -1, 1, -1}
	assert.Equal(t, 0.75, zeroCrossingRate(alt))

	// Constant sign: no crossings.
	flat := []float64{1, 2, 3, 4}
	assert.Zero(t, zeroCrossingRate(flat))

	// Zero counts as its own sign.
	withZero := []float64{0, 1, 0, -1}
	assert.Equal(t, 0.75, zeroCrossingRate(withZero))
}

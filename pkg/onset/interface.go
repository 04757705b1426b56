package onset

// DetectorInterface is the detection surface transport code depends on.
// It allows mock implementations in testing.
type DetectorInterface interface {
	// ProcessAudio analyzes one frame of raw encoded audio and reports
	// whether speech onset was detected on this call.
	ProcessAudio(buf []byte) bool

	// Reset clears all per-stream state.
	// Call it when starting a new audio stream.
	Reset()
}

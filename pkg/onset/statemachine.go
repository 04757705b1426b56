package onset

import "sort"

// scoreRing is a fixed-capacity FIFO of recent activity scores. Once full,
// pushing evicts the oldest entry. Capacity is small enough (50) that the
// median is computed by sorting a scratch copy each frame.
type scoreRing struct {
	scores  [noiseHistoryCap]float64
	scratch [noiseHistoryCap]float64
	start   int
	size    int
}

func (r *scoreRing) push(score float64) {
	if r.size < len(r.scores) {
		r.scores[(r.start+r.size)%len(r.scores)] = score
		r.size++
		return
	}
	// Full: overwrite the oldest entry and advance the start.
	r.scores[r.start] = score
	r.start = (r.start + 1) % len(r.scores)
}

func (r *scoreRing) len() int {
	return r.size
}

// median returns the median of the recorded scores, averaging the two
// middle values for even counts. Call only with len() > 0.
func (r *scoreRing) median() float64 {
	s := r.scratch[:r.size]
	for i := 0; i < r.size; i++ {
		s[i] = r.scores[(r.start+i)%len(r.scores)]
	}
	sort.Float64s(s)
	mid := r.size / 2
	if r.size%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

func (r *scoreRing) clear() {
	r.start = 0
	r.size = 0
}

// stateMachine is the adaptive hysteresis comparator at the heart of the
// detector. The noise floor is the median of the recent score history; a
// frame qualifies as speech only when its score clears the floor by
// enterThreshold, and speech ends once a frame falls within exitThreshold
// of the floor. The two thresholds form a Schmitt trigger: enter is
// strictly above exit, so the state cannot oscillate around a single floor
// value.
type stateMachine struct {
	enterThreshold float64
	exitThreshold  float64
	onsetFrames    int

	speaking    bool
	consecutive int
	history     scoreRing
}

func newStateMachine(cfg Config) *stateMachine {
	return &stateMachine{
		enterThreshold: cfg.EnterThreshold,
		exitThreshold:  cfg.ExitThreshold,
		onsetFrames:    cfg.OnsetFrames,
	}
}

// step folds one frame score into the machine and reports whether speech
// onset was confirmed on this exact frame. Onset is reported once per
// transition: further frames while speaking return false until an exit and
// a fresh qualifying run.
//
// Zero scores (silence or unanalyzable frames) are never recorded, so the
// adaptive floor is not dragged down by non-informative frames. Until
// minHistory scores have been recorded the machine performs no transition.
func (m *stateMachine) step(score float64) bool {
	if score > 0 {
		m.history.push(score)
	}

	if m.history.len() < minHistory {
		return false
	}

	noiseFloor := m.history.median()

	if !m.speaking {
		if score > noiseFloor+m.enterThreshold {
			m.consecutive++
			if m.consecutive >= m.onsetFrames {
				m.speaking = true
				return true
			}
		} else {
			// Qualifying frames must be consecutive, not cumulative.
			m.consecutive = 0
		}
		return false
	}

	if score < noiseFloor+m.exitThreshold {
		m.speaking = false
		m.consecutive = 0
	}
	return false
}

func (m *stateMachine) reset() {
	m.speaking = false
	m.consecutive = 0
	m.history.clear()
}

package onset

import (
	"testing"
)

func newTestMachine() *stateMachine {
	return newStateMachine(TelephonyConfig().withDefaults())
}

// warmUp records enough identical scores for the machine to compute a
// noise floor.
func warmUp(m *stateMachine, score float64) {
	for i := 0; i < minHistory; i++ {
		m.step(score)
	}
}

func TestStateMachineWarmUp(t *testing.T) {
	m := newTestMachine()

	// Until 10 scores are recorded, no transition happens even for a
	// clearly speech-like score.
	for i := 0; i < minHistory-1; i++ {
		if m.step(0.9) {
			t.Fatalf("onset reported during warm-up at frame %d", i)
		}
	}
	if m.speaking {
		t.Error("machine should not be speaking during warm-up")
	}
}

func TestStateMachineZeroScoresNotRecorded(t *testing.T) {
	m := newTestMachine()

	for i := 0; i < 20; i++ {
		m.step(0)
	}
	if m.history.len() != 0 {
		t.Errorf("zero scores were recorded: history len %d", m.history.len())
	}
}

func TestStateMachineOnsetExactlyOnce(t *testing.T) {
	m := newTestMachine()
	warmUp(m, 0.1)

	// Floor is 0.1; 0.5 clears the 0.15 enter margin.
	results := []bool{}
	for i := 0; i < 6; i++ {
		results = append(results, m.step(0.5))
	}

	// Onset on exactly the third qualifying frame, never again while
	// speaking.
	want := []bool{false, false, true, false, false, false}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("frame %d: got %v, want %v", i, results[i], want[i])
		}
	}
	if !m.speaking {
		t.Error("machine should be speaking after onset")
	}
}

func TestStateMachineConsecutiveRequirement(t *testing.T) {
	m := newTestMachine()
	warmUp(m, 0.1)

	// Two qualifying frames, a miss, then two more: the counter must
	// restart, so no onset fires.
	for _, score := range []float64{0.5, 0.5, 0.1, 0.5, 0.5} {
		if m.step(score) {
			t.Fatal("onset fired without three consecutive qualifying frames")
		}
	}
	if m.consecutive != 2 {
		t.Errorf("consecutive = %d, want 2", m.consecutive)
	}
}

func TestStateMachineExitHysteresis(t *testing.T) {
	m := newTestMachine()
	warmUp(m, 0.1)

	for i := 0; i < 3; i++ {
		m.step(0.5)
	}
	if !m.speaking {
		t.Fatal("expected speaking after onset")
	}

	// A score between exit (floor+0.05) and enter (floor+0.15) keeps the
	// machine speaking: that is the hysteresis band.
	m.step(0.2)
	if !m.speaking {
		t.Error("score inside hysteresis band should not end speech")
	}

	// Dropping below floor+exit ends speech.
	m.step(0.05)
	if m.speaking {
		t.Error("expected exit below floor+ExitThreshold")
	}
	if m.consecutive != 0 {
		t.Errorf("consecutive = %d after exit, want 0", m.consecutive)
	}
}

func TestStateMachineReentryAfterExit(t *testing.T) {
	m := newTestMachine()
	warmUp(m, 0.1)

	for i := 0; i < 3; i++ {
		m.step(0.5)
	}
	m.step(0.05) // exit

	// A fresh qualifying run fires onset again.
	fired := false
	for i := 0; i < 3; i++ {
		fired = m.step(0.5)
	}
	if !fired {
		t.Error("expected onset on re-entry after a full exit")
	}
}

func TestScoreRingEviction(t *testing.T) {
	var r scoreRing

	for i := 0; i < noiseHistoryCap+20; i++ {
		r.push(float64(i))
	}
	if r.len() != noiseHistoryCap {
		t.Fatalf("ring grew past capacity: %d", r.len())
	}

	// Oldest entries were evicted: the median reflects the latest 50
	// values (20..69), whose median is 44.5.
	if got := r.median(); got != 44.5 {
		t.Errorf("median = %v, want 44.5", got)
	}
}

func TestScoreRingMedian(t *testing.T) {
	var r scoreRing

	r.push(0.3)
	r.push(0.1)
	r.push(0.2)
	if got := r.median(); got != 0.2 {
		t.Errorf("odd median = %v, want 0.2", got)
	}

	r.push(0.4)
	if got := r.median(); got != 0.25 {
		t.Errorf("even median = %v, want 0.25", got)
	}
}

func TestStateMachineReset(t *testing.T) {
	m := newTestMachine()
	warmUp(m, 0.1)
	for i := 0; i < 3; i++ {
		m.step(0.5)
	}

	m.reset()
	if m.speaking || m.consecutive != 0 || m.history.len() != 0 {
		t.Errorf("reset left state: speaking=%v consecutive=%d history=%d",
			m.speaking, m.consecutive, m.history.len())
	}
}

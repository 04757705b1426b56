package onset

import "sync"

// MockDetector is a mock implementation of DetectorInterface for testing.
// It allows customizing the behavior of ProcessAudio through the
// ProcessFunc field.
type MockDetector struct {
	// ProcessFunc is called when ProcessAudio is invoked.
	// If nil, ProcessAudio returns false (no onset).
	ProcessFunc func(buf []byte) bool

	// ProcessCalls records all buffers passed to ProcessAudio.
	ProcessCalls [][]byte

	// ResetCalled tracks if Reset was called.
	ResetCalled bool

	mu sync.Mutex
}

// NewMockDetector creates a new MockDetector with default behavior.
func NewMockDetector() *MockDetector {
	return &MockDetector{
		ProcessCalls: make([][]byte, 0),
	}
}

// NewMockDetectorWithSequence creates a MockDetector that returns the given
// results in order. After the sequence is exhausted it returns false.
func NewMockDetectorWithSequence(results []bool) *MockDetector {
	idx := 0
	return &MockDetector{
		ProcessFunc: func(buf []byte) bool {
			if idx >= len(results) {
				return false
			}
			r := results[idx]
			idx++
			return r
		},
		ProcessCalls: make([][]byte, 0),
	}
}

// ProcessAudio implements DetectorInterface.
func (m *MockDetector) ProcessAudio(buf []byte) bool {
	m.mu.Lock()
	// Copy the buffer; callers may reuse it between frames.
	bufCopy := make([]byte, len(buf))
	copy(bufCopy, buf)
	m.ProcessCalls = append(m.ProcessCalls, bufCopy)
	m.mu.Unlock()

	if m.ProcessFunc != nil {
		return m.ProcessFunc(buf)
	}
	return false
}

// Reset implements DetectorInterface.
func (m *MockDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetCalled = true
}

// ProcessCallCount returns the number of times ProcessAudio was called.
func (m *MockDetector) ProcessCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ProcessCalls)
}

// Ensure MockDetector implements DetectorInterface at compile time.
var _ DetectorInterface = (*MockDetector)(nil)

// Package audio provides the codec primitives shared by the onset detector
// and the telephony transport glue.
//
// RingBuffer implements a fixed-size circular buffer for raw audio bytes.
// The barge-in server uses it to hold pre-roll audio: when onset is
// detected, the buffered bytes are the audio that preceded the detection,
// so the consumer does not lose the first syllable.
//
// Main features:
//   - Fixed capacity based on sample rate, duration and sample width
//   - Thread-safe read/write operations
//   - Writes never allocate; oldest data is overwritten once full
//
// Usage:
//
//	rb := NewRingBuffer(8000, 300, 1) // 300ms of 8kHz μ-law
//	rb.Write(mulawBytes)
//	preRoll := rb.ReadAll()
package audio

import (
	"sync"
)

// RingBuffer is a fixed-size circular buffer for raw audio bytes.
type RingBuffer struct {
	data     []byte
	capacity int // total capacity in bytes
	writePos int // next write position
	size     int // current data size (may be less than capacity initially)
	mu       sync.Mutex
}

// NewRingBuffer creates a ring buffer holding durationMs of audio.
// sampleRate is in Hz, bytesPerSample is 1 for μ-law and 2 for PCM16.
func NewRingBuffer(sampleRate, durationMs, bytesPerSample int) *RingBuffer {
	samples := sampleRate * durationMs / 1000
	capacity := samples * bytesPerSample

	return &RingBuffer{
		data:     make([]byte, capacity),
		capacity: capacity,
	}
}

// Write appends data to the ring buffer.
// If the buffer is full, oldest data is overwritten.
func (rb *RingBuffer) Write(data []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	dataLen := len(data)
	if dataLen == 0 {
		return
	}

	// If incoming data is larger than capacity, only keep the last 'capacity' bytes
	if dataLen >= rb.capacity {
		copy(rb.data, data[dataLen-rb.capacity:])
		rb.writePos = 0
		rb.size = rb.capacity
		return
	}

	// How much space remains before the wrap point
	spaceToEnd := rb.capacity - rb.writePos

	if dataLen <= spaceToEnd {
		copy(rb.data[rb.writePos:], data)
		rb.writePos += dataLen
		if rb.writePos == rb.capacity {
			rb.writePos = 0
		}
	} else {
		copy(rb.data[rb.writePos:], data[:spaceToEnd])
		copy(rb.data[0:], data[spaceToEnd:])
		rb.writePos = dataLen - spaceToEnd
	}

	rb.size += dataLen
	if rb.size > rb.capacity {
		rb.size = rb.capacity
	}
}

// ReadAll returns all buffered data in chronological order.
// Does not modify the buffer state.
func (rb *RingBuffer) ReadAll() []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.size == 0 {
		return nil
	}

	result := make([]byte, rb.size)

	if rb.size < rb.capacity {
		// Buffer not yet full, data starts at 0
		copy(result, rb.data[:rb.size])
	} else {
		// Buffer is full, oldest data starts at writePos
		firstPartLen := rb.capacity - rb.writePos
		copy(result[:firstPartLen], rb.data[rb.writePos:])
		copy(result[firstPartLen:], rb.data[:rb.writePos])
	}

	return result
}

// Clear resets the buffer to empty state.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.writePos = 0
	rb.size = 0
}

// Size returns the current amount of data in the buffer.
func (rb *RingBuffer) Size() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size
}

// Capacity returns the total capacity of the buffer.
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

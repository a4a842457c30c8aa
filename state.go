package kiln

import (
	"sync"
	"time"
)

// CapturedError is one entry in the engine's bounded error history.
type CapturedError struct {
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	Err       error     `json:"error"`
}

// errorRing is a bounded ring buffer of captured operational errors. The
// oldest entry is evicted when capacity is exceeded.
type errorRing struct {
	mu  sync.Mutex
	buf []CapturedError
	max int
}

func newErrorRing(max int) *errorRing {
	if max <= 0 {
		max = 100
	}
	return &errorRing{max: max}
}

func (r *errorRing) append(entry CapturedError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf = append(r.buf, entry)
	if len(r.buf) > r.max {
		r.buf = r.buf[len(r.buf)-r.max:]
	}
}

func (r *errorRing) snapshot() []CapturedError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CapturedError(nil), r.buf...)
}

func (r *errorRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

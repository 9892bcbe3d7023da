package trace

import (
	"io"
	"sync"
)

// Ring keeps the most recent events in a fixed-size buffer.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	start int // oldest event
	n     int
}

// NewRing returns a ring holding up to size events (4096 when size <= 0).
func NewRing(size int) *Ring {
	if size <= 0 {
		size = defaultRingSize
	}
	return &Ring{buf: make([]Event, size)}
}

// Push stores a copy of ev, overwriting the oldest entry when full.
func (r *Ring) Push(ev *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = *ev
		r.n++
		return
	}
	r.buf[r.start] = *ev
	r.start = (r.start + 1) % len(r.buf)
}

// Snapshot returns the stored events, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, r.n)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of stored events.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Dump writes the stored events to w.
func (r *Ring) Dump(w io.Writer, format Format) error {
	var line []byte
	for _, ev := range r.Snapshot() {
		line = appendEvent(line[:0], &ev, format)
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

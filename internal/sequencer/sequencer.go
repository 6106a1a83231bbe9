// Package sequencer provides a monotonic counter safe for concurrent
// callers, used to allocate order and trade ids (spec §4.6).
package sequencer

import "sync/atomic"

// Sequencer is a monotonic counter. The zero value is ready to use and
// starts at 0; the first call to Next returns 1.
type Sequencer struct {
	index atomic.Uint64
}

// New returns a fresh Sequencer starting at 0.
func New() *Sequencer {
	return &Sequencer{}
}

// Next returns a value strictly greater than any previously returned.
func (s *Sequencer) Next() uint64 {
	return s.index.Add(1)
}

// Current returns the last value handed out without allocating a new one.
func (s *Sequencer) Current() uint64 {
	return s.index.Load()
}

package collection

import "sync/atomic"

// IDSource hands out strictly increasing positive band ids.
//
// Thread-safety: IDSource is safe for concurrent use (atomic operations).
type IDSource struct {
	last atomic.Int64
}

// NewIDSource creates a source whose first id is 1.
func NewIDSource() *IDSource {
	return &IDSource{}
}

// Next returns the next id. Calls are linearizable - each returns a unique, increasing value.
func (s *IDSource) Next() int64 {
	return s.last.Add(1)
}

// Current returns the last id issued (0 if none).
func (s *IDSource) Current() int64 {
	return s.last.Load()
}

// AtLeast advances the source so the next id is greater than id.
func (s *IDSource) AtLeast(id int64) {
	for {
		cur := s.last.Load()
		if cur >= id || s.last.CompareAndSwap(cur, id) {
			return
		}
	}
}

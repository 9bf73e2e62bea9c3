package command

import "sync"

// DefaultHistorySize matches the number of commands the history command reports.
const DefaultHistorySize = 13

// History remembers the names of the most recently dispatched commands.
//
// Thread-safety: History is safe for concurrent use via internal mutex.
type History struct {
	mu    sync.Mutex
	names []string
	size  int
}

// NewHistory creates a history holding at most size names.
func NewHistory(size int) *History {
	if size < 1 {
		size = DefaultHistorySize
	}
	return &History{size: size, names: make([]string, 0, size)}
}

// Record appends a command name, evicting the oldest beyond capacity.
func (h *History) Record(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.names) == h.size {
		copy(h.names, h.names[1:])
		h.names = h.names[:h.size-1]
	}
	h.names = append(h.names, name)
}

// Names returns recorded names, oldest first.
func (h *History) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

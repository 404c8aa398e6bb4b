package logging

import (
	"io"
	"sync"
)

type LogsExporter interface {
	Export(io.Writer, bool) error
}

// MemoryLogs keeps the last lines written to it in a ring
type MemoryLogs struct {
	mu    sync.Mutex
	lines [][]byte
	next  int
	full  bool
}

func NewMemoryLogger(size int) *MemoryLogs {
	return &MemoryLogs{
		lines: make([][]byte, size),
	}
}

func (m *MemoryLogs) Write(p []byte) (n int, err error) {
	line := make([]byte, len(p))
	copy(line, p)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[m.next] = line
	m.next++
	if m.next == len(m.lines) {
		m.next = 0
		m.full = true
	}
	return len(p), nil
}

func (m *MemoryLogs) Sync() error {
	return nil
}

// Export writes the kept lines oldest first, or newest first if reverse is set
func (m *MemoryLogs) Export(w io.Writer, reverse bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ordered := m.ordered()
	for i := range ordered {
		line := ordered[i]
		if reverse {
			line = ordered[len(ordered)-1-i]
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryLogs) ordered() [][]byte {
	if !m.full {
		return m.lines[:m.next]
	}
	return append(append([][]byte{}, m.lines[m.next:]...), m.lines[:m.next]...)
}

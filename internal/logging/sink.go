package logging

import (
	"log/slog"
	"strings"
	"sync"
)

// Sink is a text handler whose output goes, one record per line, to a
// function attached after startup. Records before Attach are dropped.
type Sink struct {
	slog.Handler
	out *lineWriter
}

// NewSink creates a sink that accepts records at or above level. Lines look
// like `level=INFO msg="session ended" component=auth reason=user`.
func NewSink(level slog.Leveler) *Sink {
	out := &lineWriter{}
	return &Sink{
		Handler: slog.NewTextHandler(out, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: dropTime,
		}),
		out: out,
	}
}

// Attach sets the function that receives formatted lines
func (s *Sink) Attach(fn func(line string)) {
	s.out.mu.Lock()
	defer s.out.mu.Unlock()
	s.out.fn = fn
}

// The debug panel stamps its own time
func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// lineWriter splits handler output into lines for the attached function
type lineWriter struct {
	mu sync.RWMutex
	fn func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.RLock()
	fn := w.fn
	w.mu.RUnlock()
	if fn == nil {
		return len(p), nil
	}
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			fn(line)
		}
	}
	return len(p), nil
}

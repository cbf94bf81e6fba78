package trace

import (
	"io"
	"sync"
)

// StreamTracer prints pass, function and access events as they happen.
// Lines from modules running in parallel interleave; the module label
// on each line tells them apart.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
}

// NewStreamTracer writes to out. FormatAuto prints text.
func NewStreamTracer(out io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{out: out, level: level, format: format}
}

// Emit prints ev when its scope is within the level. Heartbeats always
// print so a long module run shows it is alive.
func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	line := FormatEvent(ev, t.format)
	t.mu.Lock()
	_, _ = t.out.Write(line) //nolint:errcheck
	t.mu.Unlock()
}

type flusher interface{ Flush() error }

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.out.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes out when it is closable. Callers that pass
// stderr wrap it so it stays open.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

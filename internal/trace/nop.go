package trace

// Nop drops every event. It is the tracer behind a context that never
// went through WithTracer, so passes can trace unconditionally.
var Nop Tracer = discard{}

type discard struct{}

func (discard) Emit(*Event)   {}
func (discard) Flush() error  { return nil }
func (discard) Close() error  { return nil }
func (discard) Level() Level  { return LevelOff }
func (discard) Enabled() bool { return false }

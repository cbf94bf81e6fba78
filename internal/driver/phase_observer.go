package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent marks a phase boundary of one module. Err is set on the
// PhaseEnd of a phase that failed; no later phase of that module runs.
type PhaseEvent struct {
	Path    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// Failed reports whether the event ends a failed phase.
func (e PhaseEvent) Failed() bool { return e.Status == PhaseEnd && e.Err != nil }

// PhaseObserver receives phase events emitted during Run. RunAll calls it
// from several goroutines at once.
type PhaseObserver func(PhaseEvent)

// Package driver runs the kernel ABI passes over loaded modules.
//
// One Run takes a module through four phases:
//
//	implicit  record implicit arguments read by intrinsics, add buffer
//	          offsets and materialize the parameters
//	frame     lay out private memory and size call stacks
//	promote   turn stateless global accesses into stateful ones
//	args      build the payload argument set of every entry
//
// Every module owns its metadata, so independent modules can run in
// parallel (see RunAll).
package driver

import (
	"time"

	"github.com/google/uuid"

	"kernelabi/internal/frame"
	"kernelabi/internal/platform"
	"kernelabi/internal/promote"
)

// DefaultMaxDiagnostics bounds the diagnostics kept per module.
const DefaultMaxDiagnostics = 256

// Session carries the configuration shared by every module of a run.
type Session struct {
	ID      uuid.UUID
	Started time.Time
	Config  platform.Config

	// Cache is optional; RunFile consults it when set.
	Cache *DiskCache

	Observer       PhaseObserver
	Remarks        bool
	MaxDiagnostics int
	Timings        bool // attach a timing diagnostic to every result

	Uniform frame.Uniformity
	Oracle  promote.Oracle
}

// NewSession starts a session with a fresh ID.
func NewSession(cfg platform.Config) *Session {
	cfg.Options.Normalize()
	return &Session{
		ID:             uuid.New(),
		Started:        time.Now(),
		Config:         cfg,
		MaxDiagnostics: DefaultMaxDiagnostics,
	}
}

func (s *Session) emit(ev PhaseEvent) {
	if s.Observer != nil {
		s.Observer(ev)
	}
}

func (s *Session) maxDiagnostics() int {
	if s.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return s.MaxDiagnostics
}

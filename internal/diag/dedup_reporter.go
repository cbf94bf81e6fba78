package diag

// DedupReporter drops a diagnostic already reported with the same code,
// severity, location and message, so a pass that revisits a function
// leaves one copy of each finding in the module's bag.
type DedupReporter struct {
	next       Reporter
	seen       map[dedupKey]bool
	suppressed int
}

type dedupKey struct {
	code Code
	sev  Severity
	loc  Loc
	msg  string
}

// NewDedupReporter forwards first occurrences to next.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: map[dedupKey]bool{}}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary Loc, msg string, notes []Note) {
	if r == nil {
		return
	}
	k := dedupKey{code, sev, primary, msg}
	if r.seen[k] {
		r.suppressed++
		return
	}
	r.seen[k] = true
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

// Suppressed is the number of repeats dropped so far.
func (r *DedupReporter) Suppressed() int { return r.suppressed }

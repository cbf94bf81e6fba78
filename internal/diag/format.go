package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line in a stable order:
//
//	error FRM3002 @kernel total private memory 1048576 exceeds 262144
//
// Notes follow their diagnostic when includeNotes is set.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	bag := &Bag{items: append([]Diagnostic(nil), diags...), max: uint16(min(len(diags), 1<<16-1))}
	bag.Sort()

	var b strings.Builder
	for i, d := range bag.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code.ID(), d.Primary, sanitizeMessage(d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "\nnote %s %s %s", d.Code.ID(), n.Loc, sanitizeMessage(n.Msg))
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kernelabi/internal/diag"
	"kernelabi/internal/driver"
	"kernelabi/internal/platform"
)

const cacheApp = "kabi"

// newSession builds a driver session from the persistent flags.
func newSession(cmd *cobra.Command) (*driver.Session, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("platform")
	if err != nil {
		return nil, err
	}
	cfg, err := platform.Resolve(path)
	if err != nil {
		return nil, err
	}
	s := driver.NewSession(cfg)
	if s.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	if s.Timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	if !noCache {
		cache, err := driver.OpenDiskCache(cacheApp)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
		} else {
			s.Cache = cache
		}
	}
	return s, nil
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

var (
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	infoLabel    = color.New(color.FgCyan).SprintFunc()
	codeLabel    = color.New(color.Faint).SprintFunc()
)

// minSeverity reads --min-severity; --quiet raises it to warnings.
func minSeverity(cmd *cobra.Command) (diag.Severity, error) {
	name, err := cmd.Root().PersistentFlags().GetString("min-severity")
	if err != nil {
		return 0, err
	}
	sev, err := diag.ParseSeverity(name)
	if err != nil {
		return 0, err
	}
	if quiet(cmd) {
		sev = max(sev, diag.SevWarning)
	}
	return sev, nil
}

// printDiagnostics writes one line per diagnostic at or above minSev with
// its notes indented below.
func printDiagnostics(w io.Writer, path string, bag *diag.Bag, minSev diag.Severity) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		if d.Severity < minSev || d.Code == diag.ObsTimings {
			continue
		}
		var label string
		switch d.Severity {
		case diag.SevError:
			label = errorLabel(d.Severity)
		case diag.SevWarning:
			label = warningLabel(d.Severity)
		default:
			label = infoLabel(d.Severity)
		}
		fmt.Fprintf(w, "%s: %s[%s] %s: %s\n", path, label, codeLabel(d.Code.ID()), d.Primary, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "    note: %s: %s\n", n.Loc, n.Msg)
		}
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "%s: %d more diagnostics not shown (--max-diagnostics)\n", path, n)
	}
}

// exitError reports that diagnostics were printed and the run failed.
type exitError struct{ errors int }

func (e *exitError) Error() string {
	if e.errors == 1 {
		return "1 module failed"
	}
	return fmt.Sprintf("%d modules failed", e.errors)
}

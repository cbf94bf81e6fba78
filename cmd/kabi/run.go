package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kernelabi/internal/driver"
	"kernelabi/internal/observ"
	"kernelabi/internal/ui"
)

var (
	runJobs int
	runUI   string
)

func init() {
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", 0, "modules processed in parallel (0 = physical cores)")
	runCmd.Flags().StringVar(&runUI, "ui", "auto", "progress UI (auto|on|off)")
}

var runCmd = &cobra.Command{
	Use:   "run <module.yaml|dir>...",
	Short: "Run every pass over one or more modules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := readUIMode(runUI)
		if err != nil {
			return err
		}
		paths, err := expandModules(args)
		if err != nil {
			return err
		}
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		jobs := runJobs
		if jobs <= 0 {
			jobs = driver.DefaultJobs()
		}

		var results []*driver.Result
		if shouldUseTUI(mode) && !quiet(cmd) {
			results, err = runWithUI(cmd.Context(), s, paths, jobs)
		} else {
			results, err = s.RunAll(cmd.Context(), paths, jobs)
		}
		if err != nil {
			return err
		}
		return reportResults(cmd, results, s.Timings)
	},
}

// expandModules replaces directories with the modules they hold.
func expandModules(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		mods, err := driver.ListModules(a)
		if err != nil {
			return nil, err
		}
		if len(mods) == 0 {
			return nil, fmt.Errorf("%s: no module files", a)
		}
		out = append(out, mods...)
	}
	return out, nil
}

func runWithUI(ctx context.Context, s *driver.Session, paths []string, jobs int) ([]*driver.Result, error) {
	events := make(chan ui.Event, 256)
	s.Observer = ui.PhaseEvents(events)

	type outcome struct {
		results []*driver.Result
		err     error
	}
	outcomeCh := make(chan outcome, 1)
	go func() {
		res, err := s.RunAll(ctx, paths, jobs)
		for _, r := range res {
			st := ui.StatusDone
			if r.Err != nil || r.Bag.HasErrors() {
				st = ui.StatusError
			}
			events <- ui.Event{Path: r.Path, Status: st}
		}
		outcomeCh <- outcome{res, err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel("kabi run", paths, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// keep workers unblocked if the UI quit early
	go func() {
		for range events {
		}
	}()
	out := <-outcomeCh
	if uiErr != nil {
		return out.results, uiErr
	}
	return out.results, out.err
}

func reportResults(cmd *cobra.Command, results []*driver.Result, timings bool) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	q := quiet(cmd)
	minSev, err := minSeverity(cmd)
	if err != nil {
		return err
	}
	failed := 0
	var reports []observ.Report
	for _, res := range results {
		printDiagnostics(stderr, res.Path, res.Bag, minSev)
		if res.Err != nil || (res.Bag != nil && res.Bag.HasErrors()) {
			failed++
			if res.Err != nil {
				fmt.Fprintf(stderr, "%s: %s: %v\n", res.Path, errorLabel("error"), res.Err)
			}
			dumpModuleTrace(stderr, res.Path)
			continue
		}
		reports = append(reports, res.Timing)
		if q {
			continue
		}
		cached := ""
		if res.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(stdout, "%s: %d entries, %d of %d accesses promoted%s\n",
			res.Path, len(res.Entries), res.Promote.Promoted, res.Promote.Candidates, cached)
	}
	if timings && len(reports) > 0 {
		fmt.Fprint(stdout, observ.Aggregate(reports...).Summary())
	}
	if failed > 0 {
		return &exitError{errors: failed}
	}
	return nil
}

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kernelabi/internal/driver"
	"kernelabi/internal/frame"
	"kernelabi/internal/modfile"
	"kernelabi/internal/ui"
)

var (
	argsEntry    string
	promoteDump  bool
	frameVerbose bool
)

func init() {
	argsCmd.Flags().StringVar(&argsEntry, "entry", "", "only show this entry function")
	promoteCmd.Flags().BoolVar(&promoteDump, "dump-metadata", false, "print the resulting metadata as YAML")
	frameCmd.Flags().BoolVarP(&frameVerbose, "verbose", "v", false, "list every slot")
}

var argsCmd = &cobra.Command{
	Use:   "args <module.yaml>",
	Short: "Show the payload layout of each entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runOne(cmd, args[0])
		if err != nil {
			return err
		}
		shown := 0
		for _, e := range res.Entries {
			if argsEntry != "" && e.Func != argsEntry {
				continue
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.PayloadTable(e, !color.NoColor))
			shown++
		}
		if argsEntry != "" && shown == 0 {
			return fmt.Errorf("no entry named %q", argsEntry)
		}
		return nil
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote <module.yaml>",
	Short: "Show stateful promotion counters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runOne(cmd, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.StatsTable(res.Promote))
		if promoteDump {
			return res.MD.DumpYAML(out)
		}
		return nil
	},
}

// frameCmd bypasses the cache; slot lists are not persisted.
var frameCmd = &cobra.Command{
	Use:   "frame <module.yaml>",
	Short: "Show the private frame of each function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		minSev, err := minSeverity(cmd)
		if err != nil {
			return err
		}
		u, err := modfile.Load(args[0])
		if err != nil {
			return err
		}
		res, err := s.Run(cmd.Context(), u)
		printDiagnostics(cmd.ErrOrStderr(), res.Path, res.Bag, minSev)
		if err != nil {
			return err
		}
		for _, fr := range res.Frames {
			printFrame(cmd.OutOrStdout(), fr, frameVerbose)
		}
		return nil
	},
}

// runOne runs a single module through the cache and prints its
// diagnostics.
func runOne(cmd *cobra.Command, path string) (*driver.Result, error) {
	s, err := newSession(cmd)
	if err != nil {
		return nil, err
	}
	minSev, err := minSeverity(cmd)
	if err != nil {
		return nil, err
	}
	res, err := s.RunFile(cmd.Context(), path)
	if res != nil {
		printDiagnostics(cmd.ErrOrStderr(), path, res.Bag, minSev)
	}
	if err != nil {
		return nil, err
	}
	if res.Bag.HasErrors() {
		return nil, &exitError{errors: 1}
	}
	return res, nil
}

func printFrame(w io.Writer, fr frame.Result, verbose bool) {
	d := fr.Desc
	fmt.Fprintf(w, "@%s: uniform %d, per-lane %d", fr.Func, d.UniformSize, d.PerLaneStride)
	if fr.Fit.SIMD > 0 {
		fmt.Fprintf(w, ", simd%d total %d", fr.Fit.SIMD, fr.Fit.TotalSize)
	}
	if fr.Fit.Clamped {
		fmt.Fprint(w, ", clamped")
	}
	if fr.StackCall > 0 {
		fmt.Fprintf(w, ", stack call %d", fr.StackCall)
	}
	if len(d.VLAs) > 0 {
		fmt.Fprintf(w, ", %d on stack", len(d.VLAs))
	}
	fmt.Fprintln(w)
	if !verbose {
		return
	}
	for _, sl := range d.Slots {
		region := "lane"
		if sl.Uniform {
			region = "uniform"
		}
		fmt.Fprintf(w, "  %-8s %6d %5d %3d  %%%s\n", region, sl.Offset, sl.Size, sl.Align, sl.Alloca.Name())
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kernelabi/internal/version"
)

// Environment variables read after .env is loaded.
const (
	envPlatform = "KABI_PLATFORM"
	envTrace    = "KABI_TRACE"
)

var rootCmd = &cobra.Command{
	Use:   "kabi",
	Short: "Kernel argument and private frame layout tool",
	Long: `kabi runs the kernel ABI passes over module descriptions: implicit
argument collection, private frame allocation, stateful address
promotion and payload layout.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
	PersistentPostRun: func(*cobra.Command, []string) {
		if traceCleanup != nil {
			traceCleanup()
		}
	},
}

var traceCleanup func()

func main() {
	// a missing .env is fine, a malformed one is not
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "kabi: .env: %v\n", err)
		os.Exit(2)
	}

	rootCmd.Version = version.Version
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(argsCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.String("min-severity", "info", "lowest diagnostic severity to print (info|warning|error)")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("platform", os.Getenv(envPlatform), "platform TOML file (default: built-in caps)")
	pf.Bool("no-cache", false, "do not read or write the result cache")
	pf.String("trace", "", "trace output file (\"-\" for stderr)")
	pf.String("trace-level", traceLevelDefault(), "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both); ring dumps failed modules")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "ring buffer size for ring trace mode")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func traceLevelDefault() string {
	if v := os.Getenv(envTrace); v != "" {
		return v
	}
	return "off"
}

func setupRun(cmd *cobra.Command, _ []string) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	if err := applyColorMode(mode); err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	traceCleanup = cleanup
	return nil
}

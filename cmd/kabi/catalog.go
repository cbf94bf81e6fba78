package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kernelabi/internal/implicitarg"
)

type catalogRow struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Uniform   string `yaml:"uniformity"`
	Count     int    `yaml:"count"`
	Align     string `yaml:"align"`
	Constant  bool   `yaml:"constant_buffer,omitempty"`
	Intrinsic string `yaml:"intrinsic,omitempty"`
}

var catalogFormat string

func init() {
	catalogCmd.Flags().StringVar(&catalogFormat, "format", "text", "output format (text|yaml)")
}

var catalogCmd = &cobra.Command{
	Use:   "catalog [name...]",
	Short: "List implicit argument kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := catalogRows(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch strings.ToLower(catalogFormat) {
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(rows); err != nil {
				return err
			}
			return enc.Close()
		case "text":
			fmt.Fprintf(out, "%-24s %-10s %-8s %5s %-6s %s\n", "NAME", "TYPE", "UNIFORM", "COUNT", "ALIGN", "INTRINSIC")
			for _, r := range rows {
				intr := r.Intrinsic
				if intr == "" {
					intr = "-"
				}
				fmt.Fprintf(out, "%-24s %-10s %-8s %5d %-6s %s\n", r.Name, r.Type, r.Uniform, r.Count, r.Align, intr)
			}
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be text or yaml)", catalogFormat)
		}
	},
}

// catalogRows returns the whole catalog, or the named kinds in the order
// given.
func catalogRows(names []string) ([]catalogRow, error) {
	all := implicitarg.All()
	byName := make(map[string]implicitarg.Descriptor, len(all))
	for _, d := range all {
		byName[d.Name] = d
	}
	pick := all
	if len(names) > 0 {
		pick = pick[:0:0]
		for _, n := range names {
			d, ok := byName[n]
			if !ok {
				return nil, fmt.Errorf("unknown implicit argument %q", n)
			}
			pick = append(pick, d)
		}
	}
	rows := make([]catalogRow, len(pick))
	for i, d := range pick {
		rows[i] = catalogRow{
			Name:      d.Name,
			Type:      d.ValType.String(),
			Uniform:   d.Uniformity.String(),
			Count:     d.Count,
			Align:     d.Align.String(),
			Constant:  d.ConstantBuffer,
			Intrinsic: string(d.Intrinsic),
		}
	}
	return rows, nil
}

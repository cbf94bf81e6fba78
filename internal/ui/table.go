package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kernelabi/internal/driver"
	"kernelabi/internal/promote"
)

var (
	headStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	implicitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var payloadColumns = []string{"offset", "size", "align", "category", "name"}

// PayloadTable renders the payload of one entry. Arguments without a
// slot are listed dimmed with a dash for the offset.
func PayloadTable(e driver.EntrySummary, styled bool) string {
	rows := make([][]string, 0, len(e.Args))
	for _, a := range e.Args {
		off := "-"
		if a.Allocated {
			off = strconv.Itoa(a.Offset)
		}
		name := a.Name
		if a.Assoc >= 0 && a.Implicit {
			name = fmt.Sprintf("%s (arg %d)", name, a.Assoc)
		}
		rows = append(rows, []string{off, strconv.Itoa(a.Size), strconv.Itoa(a.Align), a.Category, name})
	}
	widths := columnWidths(payloadColumns, rows)

	var b strings.Builder
	title := fmt.Sprintf("%s: %d bytes, %d UAVs", e.Func, e.PayloadSize, e.UAVs)
	if e.R1Added {
		title += ", R1 added"
	}
	b.WriteString(paint(headStyle, title, styled))
	b.WriteString("\n")
	b.WriteString(paint(headStyle, formatRow(payloadColumns, widths), styled))
	b.WriteString("\n")
	for i, row := range rows {
		line := formatRow(row, widths)
		switch {
		case !e.Args[i].Allocated:
			line = paint(dimStyle, line, styled)
		case e.Args[i].Implicit:
			line = paint(implicitStyle, line, styled)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if f := e.Frame; f != nil {
		fmt.Fprintf(&b, "frame: uniform %d, per-lane %d x simd%d", f.UniformSize, f.PerLaneStride, f.SIMD)
		if f.StackCallSize > 0 {
			fmt.Fprintf(&b, ", stack call %d", f.StackCallSize)
		}
		if f.Clamped {
			b.WriteString(", clamped")
		}
		b.WriteString("\n")
	}
	if !styled {
		return b.String()
	}
	return boxStyle.Render(strings.TrimSuffix(b.String(), "\n")) + "\n"
}

// StatsTable renders promotion counters, listing only reasons that
// rejected something.
func StatsTable(st promote.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "promoted %d of %d accesses in %d functions over %d arguments\n",
		st.Promoted, st.Candidates, st.Functions, st.Arguments)
	for r, n := range st.Rejected {
		if n == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-22s %d\n", promote.Reason(r).String(), n)
	}
	if st.OffsetsDropped > 0 {
		fmt.Fprintf(&b, "  %-22s %d\n", "offsets-dropped", st.OffsetsDropped)
	}
	return b.String()
}

func columnWidths(head []string, rows [][]string) []int {
	w := make([]int, len(head))
	for i, h := range head {
		w[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			w[i] = max(w[i], runewidth.StringWidth(cell))
		}
	}
	return w
}

// formatRow right-aligns numeric columns and left-aligns the rest.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if i < 3 {
			parts[i] = runewidth.FillLeft(c, widths[i])
		} else if i == len(cells)-1 {
			parts[i] = c
		} else {
			parts[i] = runewidth.FillRight(c, widths[i])
		}
	}
	return strings.Join(parts, "  ")
}

func paint(s lipgloss.Style, text string, styled bool) string {
	if !styled {
		return text
	}
	return s.Render(text)
}

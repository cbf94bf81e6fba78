package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kernelabi/internal/driver"
)

// Status is the state of one module in the progress view.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event moves one module to a new phase or final state.
type Event struct {
	Path   string
	Phase  string
	Status Status
}

// PhaseEvents forwards driver phase boundaries to ch. A failed phase
// marks the module as an error at once; otherwise a finished phase leaves
// it working and callers send StatusDone once the result is known.
func PhaseEvents(ch chan<- Event) driver.PhaseObserver {
	return func(ev driver.PhaseEvent) {
		if ev.Failed() {
			ch <- Event{Path: ev.Path, Phase: ev.Name, Status: StatusError}
			return
		}
		phase := ev.Name
		if ev.Status == driver.PhaseEnd {
			phase = nextPhase(ev.Name)
		}
		ch <- Event{Path: ev.Path, Phase: phase, Status: StatusWorking}
	}
}

func nextPhase(name string) string {
	i := slices.Index(driver.Phases, name)
	if i < 0 || i+1 >= len(driver.Phases) {
		return name
	}
	return driver.Phases[i+1]
}

type progressModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	items   []moduleItem
	index   map[string]int
	width   int
	done    bool
}

type moduleItem struct {
	path   string
	status Status
	phase  string
}

type eventMsg Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders pipeline
// progress for modules until events is closed.
func NewProgressModel(title string, modules []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]moduleItem, 0, len(modules))
	index := make(map[string]int, len(modules))
	for i, path := range modules {
		items = append(items, moduleItem{path: path})
		index[path] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s %s", m.spinner.View(), m.title)
	if m.done {
		header = "done: " + m.title
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)
	for _, item := range m.items {
		label := statusLabel(item)
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(item.status).Render(fmt.Sprintf("%12s", label)), truncate(item.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev Event) tea.Cmd {
	idx, ok := m.index[ev.Path]
	if !ok {
		return nil
	}
	it := &m.items[idx]
	// late phase events never reopen a finished module
	if it.status == StatusDone || it.status == StatusError {
		return nil
	}
	it.status = ev.Status
	if ev.Phase != "" {
		it.phase = ev.Phase
	}
	return m.prog.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, it := range m.items {
		total += itemProgress(it)
	}
	return total / float64(len(m.items))
}

// itemProgress counts a working module as halfway through its phase.
func itemProgress(it moduleItem) float64 {
	switch it.status {
	case StatusDone, StatusError:
		return 1
	case StatusWorking:
		i := slices.Index(driver.Phases, it.phase)
		if i < 0 {
			return 0
		}
		return (float64(i) + 0.5) / float64(len(driver.Phases)+1)
	default:
		return 0
	}
}

func statusLabel(it moduleItem) string {
	switch it.status {
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	case StatusWorking:
		if it.phase != "" {
			return it.phase
		}
		return "working"
	default:
		return "queued"
	}
}

func styleStatus(s Status) lipgloss.Style {
	switch s {
	case StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

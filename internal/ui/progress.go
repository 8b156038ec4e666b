// Package ui renders live progress of a multi-manifest run on a terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tyjson/internal/pipeline"
)

// unitRow is one manifest line of the view.
type unitRow struct {
	path    string
	status  string
	stage   pipeline.Stage
	elapsed time.Duration
	err     error
}

func (r unitRow) finished() bool {
	switch r.status {
	case "done", "cached", "error":
		return true
	}
	return false
}

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model
	items   []unitRow
	byPath  map[string]int
	width   int
	done    bool
}

type (
	eventMsg pipeline.Event
	doneMsg  struct{}
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// NewProgressModel shows one row per manifest with its current stage and a
// bar over all of them. The program quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(busyStyle))
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		items:   make([]unitRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.items[i] = unitRow{path: file, status: "queued"}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply records ev on its row. Events without a file describe the whole
// run and only matter through doneMsg.
func (m *progressModel) apply(ev pipeline.Event) tea.Cmd {
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.items[i]
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		row.status = label
		row.stage = ev.Stage
	}
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}
	if ev.Err != nil {
		row.err = ev.Err
	}
	total := 0.0
	for _, r := range m.items {
		total += progressOf(r)
	}
	return m.bar.SetPercent(total / float64(len(m.items)))
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder
	if m.done {
		b.WriteString(titleStyle.Render("done: " + m.title))
	} else {
		b.WriteString(m.spinner.View() + " " + titleStyle.Render(m.title))
	}
	b.WriteString("  " + dimStyle.Render(m.tally()) + "\n\n")

	const statusWidth = 10
	nameWidth := max(m.width-statusWidth-16, 20)
	for _, r := range m.items {
		fmt.Fprintf(&b, "  %s %s", styleStatus(r.status).Render(fmt.Sprintf("%*s", statusWidth, r.status)), truncate(r.path, nameWidth))
		if r.finished() && r.elapsed > 0 {
			b.WriteString(" " + dimStyle.Render(r.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteByte('\n')
		if r.err != nil {
			b.WriteString(strings.Repeat(" ", statusWidth+3) + errStyle.Render(truncate(r.err.Error(), nameWidth)) + "\n")
		}
	}
	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// tally summarises finished rows, e.g. "2/3 units, 1 cached".
func (m *progressModel) tally() string {
	var finished, cached, failed int
	for _, r := range m.items {
		if r.finished() {
			finished++
		}
		switch r.status {
		case "cached":
			cached++
		case "error":
			failed++
		}
	}
	parts := []string{fmt.Sprintf("%d/%d units", finished, len(m.items))}
	if cached > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", cached))
	}
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", failed))
	}
	return strings.Join(parts, ", ")
}

// stageWeight is the share of a unit finished when its stage starts.
var stageWeight = map[pipeline.Stage]float64{
	pipeline.StageLoad:   0.1,
	pipeline.StageDrain:  0.5,
	pipeline.StageEncode: 0.9,
}

func progressOf(r unitRow) float64 {
	if r.finished() {
		return 1
	}
	return stageWeight[r.stage]
}

var workingLabels = map[pipeline.Stage]string{
	pipeline.StageLoad:   "loading",
	pipeline.StageDrain:  "draining",
	pipeline.StageEncode: "encoding",
}

func statusLabel(stage pipeline.Stage, status pipeline.Status) string {
	if status == pipeline.StatusWorking {
		return workingLabels[stage]
	}
	switch status {
	case pipeline.StatusQueued, pipeline.StatusDone, pipeline.StatusCached, pipeline.StatusError:
		return string(status)
	}
	return ""
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done", "cached":
		return okStyle
	case "error":
		return errStyle
	case "queued":
		return dimStyle
	}
	return busyStyle
}

// truncate shortens value to width terminal cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

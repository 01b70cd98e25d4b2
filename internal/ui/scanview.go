package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressReporter receives probe progress from running work
type ProgressReporter func(done, total int)

// Work is the operation shown by RunWithProgress
type Work func(report ProgressReporter) error

type progressMsg struct {
	done, total int
}

type workDoneMsg struct {
	err error
}

// ProgressModel shows a spinner, a progress bar and a done/total counter
// while work runs in the background.
type ProgressModel struct {
	Label   string
	Spinner spinner.Model
	Bar     progress.Model

	done     int
	total    int
	started  time.Time
	finished bool
	err      error
	work     Work
	program  *tea.Program
}

// NewProgressModel creates the model for a job of total steps
func NewProgressModel(label string, total int, work Work) *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return &ProgressModel{
		Label:   label,
		Spinner: s,
		Bar:     bar,
		total:   total,
		started: time.Now(),
		work:    work,
	}
}

// Init implements tea.Model
func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.runWork)
}

func (m *ProgressModel) runWork() tea.Msg {
	err := m.work(func(done, total int) {
		if m.program != nil {
			m.program.Send(progressMsg{done: done, total: total})
		}
	})
	return workDoneMsg{err: err}
}

// Update implements tea.Model
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = ErrInterrupted
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		width := msg.Width - 30
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.Bar.Width = width

	case progressMsg:
		// Progress callbacks race each other; keep the highest count seen
		if msg.done > m.done {
			m.done = msg.done
		}
		m.total = msg.total

	case workDoneMsg:
		m.finished = true
		m.err = msg.err
		m.done = m.total
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Percent returns the completed fraction
func (m *ProgressModel) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// View implements tea.Model
func (m *ProgressModel) View() string {
	if m.finished {
		return ""
	}
	elapsed := time.Since(m.started).Round(100 * time.Millisecond)
	if m.total <= 0 {
		return fmt.Sprintf("%s %s  %s\n", m.Spinner.View(), ProgressLabelStyle.Render(m.Label), elapsed)
	}
	return fmt.Sprintf("%s %s\n  %s  %d/%d  %s\n",
		m.Spinner.View(), ProgressLabelStyle.Render(m.Label),
		m.Bar.ViewAs(m.Percent()), m.done, m.total, elapsed)
}

// ErrInterrupted is returned when the user presses ctrl+c during work
var ErrInterrupted = errors.New("interrupted")

// RunWithProgress runs work while showing an animated progress view on out.
// When out is not a terminal the work runs without any view. The work keeps
// running to completion after an interrupt; callers cancel it through their
// own context.
func RunWithProgress(out io.Writer, label string, total int, work Work) error {
	f, ok := out.(*os.File)
	if !ok || !IsTerminal(f) {
		return work(func(int, int) {})
	}

	model := NewProgressModel(label, total, work)
	p := tea.NewProgram(model, tea.WithOutput(out))
	model.program = p

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}
	return final.(*ProgressModel).err
}

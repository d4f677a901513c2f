package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// ShowProgress consumes execution events until the Completed event arrives
// and returns the final summary. Interactive sessions get a live progress
// bar; everything else falls back to line-per-event logging.
//
// Bubbletea puts the terminal in raw mode, so ctrl+c never reaches the
// process as SIGINT while the bar is up. The model maps it to cancel
// itself and keeps draining events until the worker reports its summary.
func ShowProgress(events <-chan pgsetup.Event, cancel context.CancelFunc, logger pgsetup.Logger) (pgsetup.Summary, error) {
	if !IsInteractive() {
		return LogEvents(events, logger), nil
	}

	model := newProgressModel(events, cancel)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return pgsetup.Summary{}, fmt.Errorf("progress display failed: %w", err)
	}

	m := final.(progressModel)
	if m.summary == nil {
		return pgsetup.Summary{}, fmt.Errorf("execution ended without a result")
	}
	return *m.summary, nil
}

// LogEvents consumes events and logs each one, returning the final summary.
func LogEvents(events <-chan pgsetup.Event, logger pgsetup.Logger) pgsetup.Summary {
	var summary pgsetup.Summary
	for ev := range events {
		switch e := ev.(type) {
		case pgsetup.Progress:
			logger.Verbose("[%d/%d] %s (%d row(s), %s)",
				e.Index+1, e.Total, e.File, e.RowsAffected, e.Elapsed)
		case pgsetup.Failure:
			logger.Error("[%d/%d] %s: %v", e.Index+1, e.Total, e.File, e.Err)
		case pgsetup.Completed:
			summary = e.Summary
		}
	}
	return summary
}

type eventsClosedMsg struct{}

type progressModel struct {
	events     <-chan pgsetup.Event
	cancel     context.CancelFunc
	bar        progress.Model
	spin       spinner.Model
	total      int
	done       int
	failed     int
	current    string
	cancelling bool
	summary    *pgsetup.Summary
}

func newProgressModel(events <-chan pgsetup.Event, cancel context.CancelFunc) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return progressModel{
		events: events,
		cancel: cancel,
		bar:    progress.New(progress.WithDefaultGradient()),
		spin:   sp,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.events))
}

func waitForEvent(ch <-chan pgsetup.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return ev
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pgsetup.Progress:
		m.total = msg.Total
		m.done++
		m.current = msg.File
		return m, waitForEvent(m.events)

	case pgsetup.Failure:
		m.total = msg.Total
		m.done++
		m.failed++
		m.current = msg.File
		return m, waitForEvent(m.events)

	case pgsetup.Completed:
		summary := msg.Summary
		m.summary = &summary
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// Ctrl+c cancels the run; the statement in flight still finishes
		// and the worker's final summary is drained as usual. Other keys
		// are ignored.
		if msg.Type == tea.KeyCtrlC && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	if m.summary != nil {
		if m.summary.Failed == 0 && m.summary.FirstError == nil {
			b.WriteString(SuccessStyle.Render(SymbolCheck + " " + m.summary.String()))
		} else {
			b.WriteString(ErrorStyle.Render(SymbolCross + " " + m.summary.String()))
		}
		b.WriteString("\n")
		return b.String()
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.done) / float64(m.total)
	}

	b.WriteString(m.spin.View())
	if m.cancelling {
		fmt.Fprintf(&b, " cancelling after %d/%d", m.done, m.total)
	} else {
		fmt.Fprintf(&b, " executing %d/%d", m.done, m.total)
	}
	if m.failed > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf(" (%d failed)", m.failed)))
	}
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(ratio))
	b.WriteString("\n")
	if m.current != "" {
		b.WriteString(HelpStyle.Render(SymbolArrowRight + " " + m.current))
		b.WriteString("\n")
	}
	return b.String()
}

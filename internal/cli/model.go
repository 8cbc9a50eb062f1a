package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pixbatch/internal/progress"
)

// progressModel renders the latest progress event of one batch
type progressModel struct {
	events     <-chan progress.Event
	cancel     func()
	operation  string
	started    time.Time
	width      int
	latest     progress.Event
	cancelling bool
	quitting   bool
}

type doneMsg struct{}

type eventMsg progress.Event

func newProgressModel(operation string, events <-chan progress.Event, cancel func()) progressModel {
	return progressModel{
		events:    events,
		cancel:    cancel,
		operation: operation,
		started:   time.Now(),
	}
}

func (m progressModel) Init() tea.Cmd {
	return listenForEvents(m.events)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		// events are collapsed upstream, so only keep moving forward
		if msg.Completed >= m.latest.Completed {
			m.latest = progress.Event(msg)
		}
		return m, listenForEvents(m.events)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling && m.cancel != nil {
				m.cancelling = true
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := m.latest.Percent() / 100
	elapsed := time.Since(m.started).Round(time.Millisecond)

	status := dimStyle.Render("q to cancel")
	if m.cancelling {
		status = errorStyle.Render("cancelling...")
	}

	lines := []string{
		titleStyle.Render("pixbatch " + m.operation),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.latest.Completed, m.latest.Total)),
		dimStyle.Render(fmt.Sprintf("Current: %s", m.latest.CurrentFile)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, ratio)),
		status,
	}

	return strings.Join(lines, "\n")
}

func listenForEvents(events <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(e)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

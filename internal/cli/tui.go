package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// BatchModel - Live progress for batch builds
// =============================================================================

// jobStatus is the lifecycle of one batch job.
type jobStatus int

const (
	jobPending jobStatus = iota
	jobRunning
	jobDone
	jobFailed
	jobSkipped
)

// jobState tracks one collage job on screen.
type jobState struct {
	name        string
	status      jobStatus
	arrangement string
	err         error
}

// jobStartMsg reports that a worker picked up a job.
type jobStartMsg struct{ Name string }

// jobDoneMsg reports the outcome of a job.
type jobDoneMsg struct {
	Name        string
	Arrangement string
	Skipped     bool
	Err         error
}

// batchDoneMsg reports that all workers finished.
type batchDoneMsg struct{}

// BatchModel is the bubbletea model for batch build progress.
type BatchModel struct {
	jobs     []jobState
	index    map[string]int
	finished int
	done     bool
}

// NewBatchModel creates a progress model for the given job names.
func NewBatchModel(names []string) BatchModel {
	m := BatchModel{
		jobs:  make([]jobState, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		m.jobs[i] = jobState{name: name}
		m.index[name] = i
	}
	return m
}

// Failed returns the number of jobs that ended in an error.
func (m BatchModel) Failed() int {
	n := 0
	for _, j := range m.jobs {
		if j.status == jobFailed {
			n++
		}
	}
	return n
}

func (m BatchModel) Init() tea.Cmd {
	return nil
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case jobStartMsg:
		if i, ok := m.index[msg.Name]; ok {
			m.jobs[i].status = jobRunning
		}
	case jobDoneMsg:
		if i, ok := m.index[msg.Name]; ok {
			switch {
			case msg.Err != nil:
				m.jobs[i].status = jobFailed
				m.jobs[i].err = msg.Err
			case msg.Skipped:
				m.jobs[i].status = jobSkipped
			default:
				m.jobs[i].status = jobDone
				m.jobs[i].arrangement = msg.Arrangement
			}
			m.finished++
		}
	case batchDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m BatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Building collages"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("[%d/%d]", m.finished, len(m.jobs))))
	b.WriteString("\n\n")

	for _, j := range m.jobs {
		var icon, detail string
		style := lipgloss.NewStyle().Foreground(colorWhite)
		switch j.status {
		case jobPending:
			icon = StyleDim.Render("·")
			style = StyleDim
		case jobRunning:
			icon = styleIconSpinner.Render("…")
		case jobDone:
			icon = styleIconSuccess.Render(iconSuccess)
			detail = StyleDim.Render(" " + j.arrangement)
		case jobSkipped:
			icon = styleIconWarning.Render(iconWarning)
			detail = StyleDim.Render(" skipped")
		case jobFailed:
			icon = styleIconError.Render(iconError)
			detail = StyleWarning.Render(" " + j.err.Error())
		}
		b.WriteString(fmt.Sprintf("  %s %s%s\n", icon, style.Render(j.name), detail))
	}

	if !m.done {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("ctrl+c to abort"))
	}
	return b.String()
}

package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

const executeTimeout = time.Minute

type decisionState int

const (
	decisionConfirm decisionState = iota
	decisionChoose
	decisionRunning
	decisionDone
)

// DecisionModel shows one pending proposal and drives it through the gate:
// confirm, pick a counterpart, or cancel.
type DecisionModel struct {
	gate    *engine.Gate
	pending *engine.Pending

	state      decisionState
	candidates []entity.Person
	suggested  *entity.Person
	warnings   []engine.DebtWarning
	cursor     int
	spinner    spinner.Model

	result    *engine.Result
	cancelled bool
	err       error
}

func NewDecisionModel(gate *engine.Gate, p *engine.Pending) DecisionModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return DecisionModel{
		gate:    gate,
		pending: p,
		spinner: s,
	}
}

// Done reports whether the proposal has left the gate.
func (m DecisionModel) Done() bool {
	return m.state == decisionDone
}

func (m DecisionModel) ShortHelp() string {
	switch m.state {
	case decisionConfirm:
		return "y/Enter: confirm | n/Esc: cancel"
	case decisionChoose:
		return "↑/↓: select | Enter: choose | Esc: cancel"
	case decisionDone:
		return "Esc: back"
	}

	return ""
}

type proposedMsg struct {
	pending *engine.Pending
	err     error
}

// ProposeCmd submits a to the gate off the UI goroutine.
func ProposeCmd(gate *engine.Gate, source action.Source, a action.Action) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		p, err := gate.Propose(ctx, source, a)

		return proposedMsg{pending: p, err: err}
	}
}

type outcomeMsg struct {
	outcome engine.Outcome
	err     error
}

type cancelledMsg struct {
	err error
}

func (m DecisionModel) Update(msg tea.Msg) (DecisionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case outcomeMsg:
		if msg.err == nil && msg.outcome.State == engine.StatePendingDisambiguation {
			m.state = decisionChoose
			m.candidates = msg.outcome.Candidates
			m.suggested = msg.outcome.Suggested
			m.warnings = msg.outcome.CandidateWarnings
			m.cursor = 0

			return m, nil
		}

		m.state = decisionDone
		m.result = msg.outcome.Result
		m.err = msg.err

		if msg.outcome.Warning != nil {
			m.pending.Warning = msg.outcome.Warning
		}

		return m, nil

	case cancelledMsg:
		m.state = decisionDone
		m.err = msg.err
		m.cancelled = msg.err == nil

		return m, nil

	case spinner.TickMsg:
		if m.state != decisionRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case decisionConfirm:
			return m.updateConfirm(msg)
		case decisionChoose:
			return m.updateChoose(msg)
		}
	}

	return m, nil
}

func (m DecisionModel) updateConfirm(msg tea.KeyMsg) (DecisionModel, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.state = decisionRunning
		return m, tea.Batch(m.spinner.Tick, m.confirmCmd())
	case "n", "esc":
		return m, m.cancelCmd()
	}

	return m, nil
}

func (m DecisionModel) updateChoose(msg tea.KeyMsg) (DecisionModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		m.state = decisionRunning
		return m, tea.Batch(m.spinner.Tick, m.chooseCmd(m.candidates[m.cursor].ID))
	case tea.KeyEsc:
		return m, m.cancelCmd()
	}

	return m, nil
}

func (m DecisionModel) confirmCmd() tea.Cmd {
	gate, token := m.gate, m.pending.Token

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
		defer cancel()

		out, err := gate.Confirm(ctx, token)

		return outcomeMsg{outcome: out, err: err}
	}
}

func (m DecisionModel) chooseCmd(personID uuid.UUID) tea.Cmd {
	gate, token := m.gate, m.pending.Token

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
		defer cancel()

		out, err := gate.Choose(ctx, token, personID)

		return outcomeMsg{outcome: out, err: err}
	}
}

func (m DecisionModel) cancelCmd() tea.Cmd {
	gate, token := m.gate, m.pending.Token

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return cancelledMsg{err: gate.Cancel(ctx, token)}
	}
}

func (m DecisionModel) View() string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.pending.Action.Describe()))
	fmt.Fprintf(&b, "\n\nSource: %s", m.pending.Source)

	if m.pending.Person != nil {
		fmt.Fprintf(&b, "\nCounterpart: %s (%s)", m.pending.Person.Name, m.pending.Person.Type)
	}

	if m.pending.Warning != nil {
		b.WriteString("\n\n" + warningStyle.Render("Warning: "+m.pending.Warning.String()))
	}

	switch m.state {
	case decisionConfirm:
		if len(m.pending.Candidates) > 1 {
			fmt.Fprintf(&b, "\n\n%d people match this name. You will pick one after confirming.", len(m.pending.Candidates))
		}

		b.WriteString("\n\nConfirm? (y/n)")

	case decisionChoose:
		b.WriteString("\n\nWho did you mean?\n\n")

		for i, c := range m.candidates {
			cursor := " "
			if i == m.cursor {
				cursor = ">"
			}

			line := c.Name
			if c.Phone != "" {
				line += "  " + lipgloss.NewStyle().Faint(true).Render(c.Phone)
			}

			if m.suggested != nil && m.suggested.ID == c.ID {
				line += "  " + activeStyle("(chosen last time)")
			}

			for _, w := range m.warnings {
				if w.PersonID == c.ID {
					line += "  " + warningStyle.Render("owes "+w.Balance.StringFixed(2)+" "+string(w.Currency))
				}
			}

			fmt.Fprintf(&b, "%s %s\n", cursor, line)
		}

	case decisionRunning:
		fmt.Fprintf(&b, "\n\n%s Saving...", m.spinner.View())

	case decisionDone:
		b.WriteString("\n\n" + m.viewOutcome())
	}

	return panelStyle.Render(b.String())
}

func (m DecisionModel) viewOutcome() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	case m.cancelled:
		return lipgloss.NewStyle().Faint(true).Render("Cancelled. Nothing was saved.")
	case m.result != nil:
		return successStyle.Render(m.result.Title) + "\n" + m.result.Summary
	}

	return ""
}

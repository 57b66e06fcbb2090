package view

import (
	"encoding/json"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
)

type commandState int

const (
	commandStateSelect commandState = iota
	commandStateArgs
	commandStateProposing
	commandStateDecision
	commandStateError
)

// argsTemplates prefill the argument editor for each action.
var argsTemplates = []struct {
	name action.Name
	args string
}{
	{action.NameRecordSale, `{"customer_name": "", "qat_type": "", "quantity": 1, "unit_price": 0, "currency": "YER", "status": "credit"}`},
	{action.NameRecordPurchase, `{"supplier_name": "", "qat_type": "", "quantity": 1, "unit_price": 0, "currency": "YER", "status": "credit"}`},
	{action.NameRecordWaste, `{"qat_type": "", "quantity": 1}`},
	{action.NameRecordReturn, `{"operation_type": "sale", "person_name": "", "qat_type": ""}`},
	{action.NameRecordVoucher, `{"type": "receipt", "person_name": "", "amount": 0, "currency": "YER"}`},
	{action.NameManagePerson, `{"action": "add", "type": "customer", "name": "", "phone": ""}`},
	{action.NameManageCategory, `{"action": "add", "name": "", "price": 0, "currency": "YER", "stock": 0}`},
	{action.NameRecordOpeningBalance, `{"person_type": "customer", "person_name": "", "amount": 0, "currency": "YER", "balance_type": "debit"}`},
	{action.NameSendMessage, `{"person_name": "", "message_type": "statement"}`},
	{action.NameSystemControl, `{"command": "backup"}`},
}

// CommandModel composes a command by hand and sends it through the gate
// the same way a voice or text request would arrive.
type CommandModel struct {
	CommonModel
	gate *engine.Gate

	state    commandState
	form     *huh.Form
	name     action.Name
	args     string
	decision DecisionModel
	err      error
}

func NewCommandModel(gate *engine.Gate) CommandModel {
	m := CommandModel{gate: gate}
	m.form = m.buildSelectForm()

	return m
}

func (m CommandModel) Title() string { return "New Command" }

func (m CommandModel) ShortHelp() string {
	switch m.state {
	case commandStateDecision:
		return m.decision.ShortHelp()
	case commandStateError:
		return "Esc: back"
	}

	return "Enter: next | Esc: back"
}

func (m CommandModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m CommandModel) buildSelectForm() *huh.Form {
	opts := make([]huh.Option[action.Name], len(argsTemplates))
	for i, t := range argsTemplates {
		opts[i] = huh.NewOption(string(t.name), t.name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[action.Name]().
				Key("action").
				Title("Action").
				Options(opts...).
				Value(&m.name),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m *CommandModel) buildArgsForm() *huh.Form {
	for _, t := range argsTemplates {
		if t.name == m.name {
			m.args = t.args
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("args").
				Title(fmt.Sprintf("Arguments for %s", m.name)).
				Description("JSON object. Arabic values are accepted.").
				Lines(6).
				Value(&m.args).
				Validate(func(s string) error {
					if !json.Valid([]byte(s)) {
						return errors.New("arguments must be valid JSON")
					}

					return nil
				}),
		),
	).WithWidth(80).WithShowHelp(false)
}

func (m CommandModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p, ok := msg.(proposedMsg); ok {
		if p.err != nil {
			m.state = commandStateError
			m.err = p.err

			return m, nil
		}

		m.state = commandStateDecision
		m.decision = NewDecisionModel(m.gate, p.pending)

		return m, nil
	}

	switch m.state {
	case commandStateSelect, commandStateArgs:
		return m.updateForm(msg)

	case commandStateDecision:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && m.decision.Done() {
			return m, Back
		}

		var cmd tea.Cmd
		m.decision, cmd = m.decision.Update(msg)

		return m, cmd

	case commandStateError:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			m.gate.Acknowledge()
			return m, Back
		}
	}

	return m, nil
}

func (m CommandModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == commandStateSelect {
		if name, ok := m.form.Get("action").(action.Name); ok {
			m.name = name
		}

		m.state = commandStateArgs
		m.form = m.buildArgsForm()

		return m, m.form.Init()
	}

	m.args = m.form.GetString("args")

	a, err := action.Decode(m.name, json.RawMessage(m.args))
	if err != nil {
		m.state = commandStateError
		m.err = err

		return m, nil
	}

	m.state = commandStateProposing

	return m, ProposeCmd(m.gate, action.SourceForm, a)
}

func (m CommandModel) View() string {
	var content string

	switch m.state {
	case commandStateSelect, commandStateArgs:
		content = m.form.View()
	case commandStateProposing:
		content = "Checking..."
	case commandStateDecision:
		content = m.decision.View()
	case commandStateError:
		content = errorStyle.Render("Rejected: "+m.err.Error()) + "\n\n(Esc to go back)"
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

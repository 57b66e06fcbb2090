package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/ledger"
)

type statementState int

const (
	statementStateLoading statementState = iota
	statementStatePerson
	statementStateTimeframe
	statementStateTable
)

// StatementModel shows a person's account statement for a period.
type StatementModel struct {
	CommonModel
	store entity.Store

	state  statementState
	snap   *entity.Snapshot
	form   *huh.Form
	picker TimeframePicker
	table  table.Model

	personType entity.PersonType
	personID   uuid.UUID
	currency   entity.Currency
	period     RangeSelectedMsg

	err error
}

func NewStatementModel(store entity.Store) StatementModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Kind", Width: 10},
			{Title: "Details", Width: 34},
			{Title: "Debit", Width: 14},
			{Title: "Credit", Width: 14},
			{Title: "Balance", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return StatementModel{
		store:      store,
		picker:     NewTimeframePicker(),
		table:      t,
		personType: entity.PersonCustomer,
		currency:   entity.CurrencyYER,
	}
}

func (m StatementModel) Title() string { return "Account Statement" }

func (m StatementModel) ShortHelp() string {
	if m.state == statementStateTable {
		return "Esc: back | p: change period"
	}

	return "Esc: back | Enter: select"
}

func (m StatementModel) Init() tea.Cmd {
	return loadSnapshotCmd(m.store)
}

func (m StatementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.snap = msg.snap
		m.state = statementStatePerson
		m.form = m.buildPersonForm()

		return m, m.form.Init()

	case RangeSelectedMsg:
		m.period = msg
		m.state = statementStateTable
		m.refreshRows()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case statementStatePerson:
		return m.updatePerson(msg)
	case statementStateTimeframe:
		return m.updateTimeframe(msg)
	case statementStateTable:
		return m.updateTable(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func (m *StatementModel) buildPersonForm() *huh.Form {
	currencies := make([]huh.Option[entity.Currency], len(entity.Currencies))
	for i, c := range entity.Currencies {
		currencies[i] = huh.NewOption(string(c), c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[entity.PersonType]().
				Key("type").
				Title("Account").
				Options(
					huh.NewOption("Customer", entity.PersonCustomer),
					huh.NewOption("Supplier", entity.PersonSupplier),
				).
				Value(&m.personType),
		),
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Key("person").
				Title("Person").
				OptionsFunc(func() []huh.Option[uuid.UUID] {
					people := m.snap.People(m.personType)
					opts := make([]huh.Option[uuid.UUID], len(people))

					for i, p := range people {
						opts[i] = huh.NewOption(p.Name, p.ID)
					}

					return opts
				}, &m.personType).
				Value(&m.personID),
			huh.NewSelect[entity.Currency]().
				Key("currency").
				Title("Currency").
				Options(currencies...).
				Value(&m.currency),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m StatementModel) updatePerson(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	if t, ok := m.form.Get("type").(entity.PersonType); ok {
		m.personType = t
	}

	if id, ok := m.form.Get("person").(uuid.UUID); ok {
		m.personID = id
	}

	if cur, ok := m.form.Get("currency").(entity.Currency); ok {
		m.currency = cur
	}

	if _, ok := m.snap.Person(m.personType, m.personID); !ok {
		m.err = fmt.Errorf("no %s selected", m.personType)
		m.form = m.buildPersonForm()

		return m, m.form.Init()
	}

	m.err = nil
	m.state = statementStateTimeframe
	m.picker.Reset()

	return m, nil
}

func (m StatementModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && m.picker.IsSelecting() {
		m.state = statementStatePerson
		m.form = m.buildPersonForm()

		return m, m.form.Init()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m StatementModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, Back
		case "p":
			m.state = statementStateTimeframe
			m.picker.Reset()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *StatementModel) refreshRows() {
	rows := ledger.Statement(m.snap, m.personType, m.personID, m.currency)
	if !m.period.Range.All() {
		rows = ledger.Between(rows, m.period.Range.Start, m.period.Range.End)
	}

	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row{
			FormatDate(r.Date),
			string(r.Kind),
			r.Details,
			r.Debit.StringFixed(2),
			r.Credit.StringFixed(2),
			r.Balance.StringFixed(2),
		}
	}

	m.table.SetRows(tableRows)
}

func (m StatementModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	var content string

	switch m.state {
	case statementStateLoading:
		content = "Loading..."
	case statementStatePerson:
		content = m.form.View()
	case statementStateTimeframe:
		content = m.picker.View()
	case statementStateTable:
		content = m.viewTable()
	}

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + content
	}

	return style.Render(content)
}

func (m StatementModel) viewTable() string {
	p, _ := m.snap.Person(m.personType, m.personID)
	balance := ledger.Balance(m.snap, m.personType, m.personID, m.currency)

	header := fmt.Sprintf("%s (%s) | %s | Balance: %s",
		activeStyle(p.Name), p.Type, m.period.Label, FormatAmount(balance, m.currency))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)
}

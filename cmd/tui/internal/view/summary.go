package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/ledger"
)

type summaryTab int

const (
	summaryTabTotals summaryTab = iota
	summaryTabCustomers
	summaryTabSuppliers
)

var summaryTabLabels = []string{"Totals", "Customers owing", "Owed to suppliers"}

// SummaryModel shows the global position per currency and who owes what.
type SummaryModel struct {
	CommonModel
	store entity.Store

	tab     summaryTab
	table   table.Model
	snap    *entity.Snapshot
	loading bool
	err     error
}

func NewSummaryModel(store entity.Store) SummaryModel {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return SummaryModel{
		store:   store,
		table:   t,
		loading: true,
	}
}

func (m SummaryModel) Title() string { return "Balances" }

func (m SummaryModel) ShortHelp() string {
	return "Esc: back | Tab: switch view | r: refresh"
}

func (m SummaryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.loading = false
		m.snap, m.err = msg.snap, msg.err
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "tab":
			m.tab = (m.tab + 1) % summaryTab(len(summaryTabLabels))
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *SummaryModel) refreshTable() {
	if m.snap == nil {
		return
	}

	// Columns change with the tab; clear rows first so the table never
	// renders rows wider than its columns.
	m.table.SetRows(nil)

	switch m.tab {
	case summaryTabTotals:
		m.table.SetColumns([]table.Column{
			{Title: "Currency", Width: 10},
			{Title: "Owed to us", Width: 18},
			{Title: "We owe", Width: 18},
			{Title: "Net", Width: 18},
		})

		lines := ledger.Summary(m.snap)
		rows := make([]table.Row, len(lines))

		for i, l := range lines {
			rows[i] = table.Row{string(l.Currency), l.Assets.StringFixed(2), l.Liabilities.StringFixed(2), l.Net.StringFixed(2)}
		}

		m.table.SetRows(rows)

	case summaryTabCustomers, summaryTabSuppliers:
		t := entity.PersonCustomer
		if m.tab == summaryTabSuppliers {
			t = entity.PersonSupplier
		}

		m.table.SetColumns([]table.Column{
			{Title: "Name", Width: 28},
			{Title: "Phone", Width: 14},
			{Title: "Balance", Width: 40},
		})

		debts := ledger.Outstanding(m.snap, t)
		rows := make([]table.Row, len(debts))

		for i, d := range debts {
			parts := make([]string, len(d.Balances))
			for j, b := range d.Balances {
				parts[j] = FormatAmount(b.Value, b.Currency)
			}

			rows[i] = table.Row{d.Person.Name, d.Person.Phone, strings.Join(parts, ", ")}
		}

		m.table.SetRows(rows)
	}
}

func (m SummaryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading balances...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	tabs := make([]string, len(summaryTabLabels))
	for i, label := range summaryTabLabels {
		if summaryTab(i) == m.tab {
			label = activeStyle(label)
		}

		tabs[i] = label
	}

	header := strings.Join(tabs, " | ")

	if total, ok := ledger.NetYER(ledger.Summary(m.snap), m.snap.Rates); ok {
		header += "\nNet position: " + FormatAmount(total, entity.CurrencyYER)
	} else {
		header += "\nNet position: set exchange rates to see the YER total"
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
		),
	)
}

type snapshotMsg struct {
	snap *entity.Snapshot
	err  error
}

func loadSnapshotCmd(store entity.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		snap, err := store.Snapshot(ctx)

		return snapshotMsg{snap: snap, err: err}
	}
}

func (m SummaryModel) loadCmd() tea.Cmd {
	return loadSnapshotCmd(m.store)
}

package view

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
	"github.com/MrJamesThe3rd/daftar/internal/importer"
)

type importState int

const (
	importStateCharset importState = iota
	importStateFilePick
	importStateParsing
	importStateDecision
	importStateError
)

// ImportModel reads a spreadsheet of legacy balances and proposes them as
// one importOpeningBalances action.
type ImportModel struct {
	CommonModel
	gate          *engine.Gate
	importService *importer.Service

	state      importState
	form       *huh.Form
	charset    string
	filePicker filepicker.Model
	decision   DecisionModel

	status string
	err    error
	// proposed marks an error reported by the gate.
	proposed bool
}

func NewImportModel(gate *engine.Gate, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	m := ImportModel{
		gate:          gate,
		importService: impSvc,
		filePicker:    fp,
	}
	m.form = m.buildCharsetForm()

	return m
}

func (m ImportModel) Title() string { return "Import Opening Balances" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateDecision {
		return m.decision.ShortHelp()
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *ImportModel) buildCharsetForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("charset").
				Title("File encoding").
				Options(
					huh.NewOption("Detect automatically", ""),
					huh.NewOption("UTF-8", "utf-8"),
					huh.NewOption("Windows Arabic (1256)", "windows-1256"),
					huh.NewOption("ISO Arabic (8859-6)", "iso-8859-6"),
				).
				Value(&m.charset),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case parsedMsg:
		if msg.err != nil {
			m.state = importStateError
			m.err = msg.err

			return m, nil
		}

		m.status = fmt.Sprintf("%d balances read", len(msg.action.Lines))

		return m, ProposeCmd(m.gate, action.SourceImport, msg.action)

	case proposedMsg:
		if msg.err != nil {
			m.state = importStateError
			m.err = msg.err
			m.proposed = true

			return m, nil
		}

		m.state = importStateDecision
		m.decision = NewDecisionModel(m.gate, msg.pending)

		return m, nil
	}

	switch m.state {
	case importStateCharset:
		return m.updateCharset(msg)

	case importStateFilePick:
		return m.updateFilePick(msg)

	case importStateDecision:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && m.decision.Done() {
			return m, Back
		}

		var cmd tea.Cmd
		m.decision, cmd = m.decision.Update(msg)

		return m, cmd

	case importStateError:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			if m.proposed {
				m.gate.Acknowledge()
			}

			return m, Back
		}
	}

	return m, nil
}

func (m ImportModel) updateCharset(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	m.charset = m.form.GetString("charset")
	m.state = importStateFilePick

	return m, m.filePicker.Init()
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.state = importStateCharset
		m.form = m.buildCharsetForm()

		return m, m.form.Init()
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case importStateCharset:
		return style.Render(m.form.View())
	case importStateFilePick:
		return style.Render("Select the balances file:\n\n" + m.filePicker.View())
	case importStateParsing:
		return style.Render(m.status)
	case importStateDecision:
		return style.Render(m.status + "\n\n" + m.decision.View())
	case importStateError:
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	return ""
}

type parsedMsg struct {
	action *action.ImportOpeningBalances
	err    error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	svc, charset := m.importService, m.charset

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parsedMsg{err: err}
		}
		defer f.Close()

		a, err := svc.Import(importer.FormatLedgerCSV, charset, f)
		if err != nil {
			return parsedMsg{err: err}
		}

		if err := action.Validate(a); err != nil {
			return parsedMsg{err: err}
		}

		return parsedMsg{action: a}
	}
}

package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/daftar/internal/audit"
	"github.com/MrJamesThe3rd/daftar/internal/notify"
)

const activityLimit = 50

type notificationItem struct {
	n notify.Notification
}

func (i notificationItem) Title() string {
	title := i.n.Title

	switch i.n.Severity {
	case notify.SeverityError:
		title = errorStyle.Render(title)
	case notify.SeverityWarning:
		title = warningStyle.Render(title)
	case notify.SeveritySuccess:
		title = successStyle.Render(title)
	}

	return fmt.Sprintf("%s  %s", i.n.CreatedAt.Format("15:04:05"), title)
}

func (i notificationItem) Description() string { return i.n.Message }
func (i notificationItem) FilterValue() string { return i.n.Title + " " + i.n.Message }

type auditItem struct {
	e *audit.Entry
}

func (i auditItem) Title() string {
	return fmt.Sprintf("%s  %s", i.e.CreatedAt.Format("2006-01-02 15:04"), activeStyle(i.e.Category))
}

func (i auditItem) Description() string { return i.e.Detail }
func (i auditItem) FilterValue() string { return i.e.Category + " " + i.e.Detail }

// ActivityModel lists recent notifications and the audit log.
type ActivityModel struct {
	CommonModel
	notifications *notify.Center
	audit         *audit.Service

	showAudit bool
	list      list.Model
	err       error
}

func NewActivityModel(notifications *notify.Center, auditSvc *audit.Service) ActivityModel {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	m := ActivityModel{
		notifications: notifications,
		audit:         auditSvc,
		list:          l,
	}
	m.setNotifications()

	return m
}

func (m ActivityModel) Title() string { return "Activity" }

func (m ActivityModel) ShortHelp() string {
	return "Esc: back | Tab: notifications/audit log | r: refresh | /: filter"
}

func (m ActivityModel) Init() tea.Cmd {
	return nil
}

func (m *ActivityModel) setNotifications() {
	ns := m.notifications.List(activityLimit)
	items := make([]list.Item, len(ns))

	for i, n := range ns {
		items[i] = notificationItem{n: n}
	}

	m.list.Title = "Notifications"
	m.list.SetItems(items)
}

type auditLoadedMsg struct {
	entries []*audit.Entry
	err     error
}

func (m ActivityModel) loadAuditCmd() tea.Cmd {
	svc := m.audit

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		entries, err := svc.Recent(ctx, activityLimit)

		return auditLoadedMsg{entries: entries, err: err}
	}
}

func (m ActivityModel) refresh() (tea.Model, tea.Cmd) {
	if m.showAudit {
		return m, m.loadAuditCmd()
	}

	m.setNotifications()

	return m, nil
}

func (m ActivityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case auditLoadedMsg:
		m.err = msg.err

		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = auditItem{e: e}
		}

		m.list.Title = "Audit log"

		return m, m.list.SetItems(items)

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "tab":
			m.showAudit = !m.showAudit
			return m.refresh()
		case "r":
			return m.refresh()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m ActivityModel) View() string {
	content := m.list.View()
	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

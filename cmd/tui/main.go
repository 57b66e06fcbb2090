package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/daftar/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/daftar/internal/app"
	"github.com/MrJamesThe3rd/daftar/internal/config"
	"github.com/MrJamesThe3rd/daftar/internal/notify"
)

type View int

const (
	ViewMenu View = iota
	ViewCommand
	ViewSummary
	ViewStatement
	ViewImport
	ViewActivity
)

type screen interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type model struct {
	app   *app.App
	title string

	currentView View
	screen      screen

	notifications <-chan notify.Notification
	last          *notify.Notification
	width, height int
}

type notificationMsg notify.Notification

func waitForNotification(ch <-chan notify.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}

		return notificationMsg(n)
	}
}

func (m model) Init() tea.Cmd {
	return waitForNotification(m.notifications)
}

func (m model) open(v View) (tea.Model, tea.Cmd) {
	switch v {
	case ViewCommand:
		m.screen = view.NewCommandModel(m.app.Gate)
	case ViewSummary:
		m.screen = view.NewSummaryModel(m.app.Store)
	case ViewStatement:
		m.screen = view.NewStatementModel(m.app.Store)
	case ViewImport:
		m.screen = view.NewImportModel(m.app.Gate, m.app.Importer)
	case ViewActivity:
		m.screen = view.NewActivityModel(m.app.Notifications, m.app.Audit)
	default:
		return m, nil
	}

	m.currentView = v

	cmds := []tea.Cmd{m.screen.Init()}
	if m.width > 0 {
		size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
		cmds = append(cmds, func() tea.Msg { return size })
	}

	return m, tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notificationMsg:
		n := notify.Notification(msg)
		m.last = &n

		return m, waitForNotification(m.notifications)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case view.BackMsg:
		m.currentView = ViewMenu
		m.screen = nil

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(ViewCommand)
			case "2":
				return m.open(ViewSummary)
			case "3":
				return m.open(ViewStatement)
			case "4":
				return m.open(ViewImport)
			case "5":
				return m.open(ViewActivity)
			}

			return m, nil
		}
	}

	if m.screen == nil {
		return m, nil
	}

	next, cmd := m.screen.Update(msg)
	if s, ok := next.(screen); ok {
		m.screen = s
	}

	return m, cmd
}

func (m model) View() string {
	var body string

	if m.currentView == ViewMenu || m.screen == nil {
		body = lipgloss.NewStyle().Padding(2).Render(
			m.title + "\n\n" +
				"1. New Command\n" +
				"2. Balances\n" +
				"3. Account Statement\n" +
				"4. Import Opening Balances\n" +
				"5. Activity\n\n" +
				"q. Quit",
		)
	} else {
		header := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(m.screen.Title())
		help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.screen.ShortHelp())
		body = lipgloss.JoinVertical(lipgloss.Left, header, m.screen.View(), help)
	}

	if m.last != nil {
		status := lipgloss.NewStyle().Faint(true).PaddingLeft(1).
			Render(fmt.Sprintf("[%s] %s: %s", m.last.Severity, m.last.Title, m.last.Message))
		body += "\n" + status
	}

	return body
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logFile, err := tea.LogToFile("daftar-tui.log", "daftar")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start:", err)
		os.Exit(1)
	}
	defer a.Close()

	notifications, unsubscribe := a.Notifications.Subscribe()
	defer unsubscribe()

	p := tea.NewProgram(model{
		app:           a,
		title:         cfg.App.Name,
		notifications: notifications,
	}, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Timeframe is a preset or custom period for statements.
type Timeframe int

const (
	TimeframeToday Timeframe = iota
	TimeframeThisWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeAll
	TimeframeCustom
)

var timeframeLabels = map[Timeframe]string{
	TimeframeToday:     "Today",
	TimeframeThisWeek:  "This Week",
	TimeframeThisMonth: "This Month",
	TimeframeLastMonth: "Last Month",
	TimeframeAll:       "All Time",
	TimeframeCustom:    "Custom Range",
}

func (t Timeframe) String() string {
	if s, ok := timeframeLabels[t]; ok {
		return s
	}

	return "Unknown"
}

// Range is an inclusive period in local time. The zero Range is unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) All() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r Range) String() string {
	if r.All() {
		return "all time"
	}

	return FormatDate(r.Start) + " .. " + FormatDate(r.End)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// RangeFor resolves a preset relative to now. Weeks start on Saturday.
func RangeFor(tf Timeframe, now time.Time) Range {
	today := startOfDay(now)

	switch tf {
	case TimeframeToday:
		return Range{Start: today, End: endOfDay(now)}
	case TimeframeThisWeek:
		back := (int(now.Weekday()) - int(time.Saturday) + 7) % 7
		return Range{Start: today.AddDate(0, 0, -back), End: endOfDay(now)}
	case TimeframeThisMonth:
		return Range{Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), End: endOfDay(now)}
	case TimeframeLastMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return Range{Start: first, End: first.AddDate(0, 1, 0).Add(-time.Nanosecond)}
	}

	return Range{}
}

// ParseRange reads a custom period typed as two YYYY-MM-DD dates.
func ParseRange(start, end string, loc *time.Location) (Range, error) {
	s, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(start), loc)
	if err != nil {
		return Range{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	e, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(end), loc)
	if err != nil {
		return Range{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if e.Before(s) {
		return Range{}, errors.New("end date is before start date")
	}

	return Range{Start: s, End: endOfDay(e)}, nil
}

// RangeSelectedMsg is emitted once the user settles on a period.
type RangeSelectedMsg struct {
	Range Range
	Label string
}

// TimeframePicker lets the user choose a preset or type a custom range.
type TimeframePicker struct {
	custom   bool
	selected Timeframe
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "From: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "To:   "

	return TimeframePicker{
		selected:   TimeframeAll,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.custom {
			return m.updateInputs(msg)
		}

		return m, nil
	}

	if m.custom {
		return m.updateCustom(key)
	}

	switch key.Type {
	case tea.KeyUp:
		if m.selected > TimeframeToday {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.custom = true
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		selected := RangeSelectedMsg{Range: RangeFor(m.selected, m.now()), Label: m.selected.String()}

		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(key tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch key.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink

	case "enter":
		r, err := ParseRange(m.startInput.Value(), m.endInput.Value(), m.now().Location())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		selected := RangeSelectedMsg{Range: r, Label: r.String()}

		return m, func() tea.Msg { return selected }

	case "esc":
		m.custom = false
		m.err = nil

		return m, nil
	}

	return m.updateInputs(key)
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var sc, ec tea.Cmd

	m.startInput, sc = m.startInput.Update(msg)
	m.endInput, ec = m.endInput.Update(msg)

	return m, tea.Batch(sc, ec)
}

func (m TimeframePicker) View() string {
	var b strings.Builder

	if m.custom {
		fmt.Fprintf(&b, "Custom period:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to go back)",
			m.startInput.View(), m.endInput.View())
	} else {
		b.WriteString("Period:\n\n")

		for tf := TimeframeToday; tf <= TimeframeCustom; tf++ {
			cursor := " "
			if tf == m.selected {
				cursor = ">"
			}

			fmt.Fprintf(&b, "%s %s\n", cursor, tf)
		}

		b.WriteString("\n(Enter to select, Esc to go back)")
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}

	return b.String()
}

// IsSelecting reports whether the picker shows the preset list.
func (m TimeframePicker) IsSelecting() bool {
	return !m.custom
}

func (m *TimeframePicker) Reset() {
	m.custom = false
	m.selected = TimeframeAll
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}

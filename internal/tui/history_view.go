package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/MKhiriev/go-secure-folder/models"
)

const hotKeysHistory = "↑/↓: scroll • tab/esc: back • c: copy path • v: about"

func (m appModel) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.up):
		if m.historyOffset > 0 {
			m.historyOffset--
		}
	case key.Matches(msg, keys.down):
		if m.historyOffset < len(m.history)-1 {
			m.historyOffset++
		}
	case key.Matches(msg, keys.esc):
		m.screen = screenBrowser
	case key.Matches(msg, keys.refresh):
		m.history = m.engine.History()
		m.historyOffset = clampCursor(m.historyOffset, len(m.history))
	}
	return m, nil
}

func (m appModel) historyView() string {
	if len(m.history) == 0 {
		return renderPage("HISTORY", helpStyle.Render("no operations yet"), hotKeysHistory)
	}

	var b strings.Builder
	b.WriteString(helpStyle.Render(fmt.Sprintf("%-16s %-8s %-10s %-28s %6s %9s %8s",
		"WHEN", "KIND", "OUTCOME", "TARGET", "FILES", "SIZE", "TOOK")))
	b.WriteString("\n")

	rows := m.history[m.historyOffset:]
	if h := m.listHeight() / 2; h > 0 && len(rows) > h {
		rows = rows[:h]
	}
	for _, r := range rows {
		b.WriteString(renderHistoryRecord(r))
		b.WriteString("\n")
	}
	if m.status.text != "" {
		b.WriteString("\n")
		b.WriteString(m.status.View())
	}

	return renderPage(fmt.Sprintf("HISTORY (%d)", len(m.history)), b.String(), hotKeysHistory)
}

func renderHistoryRecord(r models.HistoryRecord) string {
	outcome := fmt.Sprintf("%-10s", r.Outcome)
	switch r.Outcome {
	case models.OutcomeSuccess:
		outcome = successStyle.Render(outcome)
	case models.OutcomeCancelled:
		outcome = warningStyle.Render(outcome)
	default:
		outcome = errorStyle.Render(outcome)
	}

	line := fmt.Sprintf("%-16s %-8s %s %-28s %6d %9s %8s",
		fitText(humanize.Time(r.Timestamp), 16),
		r.Kind,
		outcome,
		fitText(filepath.Base(r.Target), 28),
		r.Files,
		humanize.Bytes(uint64(r.Bytes)),
		r.Duration.Round(time.Millisecond),
	)
	if r.Succeeded() {
		if r.Message == "" {
			return line
		}
		return line + "\n" + warningStyle.Render("    "+fitText(r.Message, 90))
	}
	if r.Reason == "" {
		return line
	}

	reason := string(r.Reason)
	if r.Message != "" {
		reason += ": " + r.Message
	}
	return line + "\n" + helpStyle.Render("    "+fitText(reason, 90))
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/the-ledger-must-balance/internal/editor"
	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// chrome is the number of lines around the list: header, totals, column
// titles, status and help.
const chrome = 7

func (m Model) listHeight() int {
	if h := m.height - chrome; h > 1 {
		return h
	}
	return 1
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.loading {
		return m.theme.Subtle.Render("Loading history...")
	}

	switch m.screen {
	case ScreenHelp:
		return m.renderHelp()
	case ScreenForm:
		return m.renderForm()
	case ScreenConfirmDelete:
		return m.renderConfirm()
	default:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.renderList(),
			m.renderStatus(),
			m.help.View(m.keymap),
		)
	}
}

func (m Model) renderHeader() string {
	f := m.deps.Formatter
	title := m.theme.Title.Render("Ledger · " + m.view.FilterLabel)

	totals := m.view.Totals
	line := fmt.Sprintf("%s  %s  %s",
		m.theme.In.Render("In "+f.Currency(totals.In)),
		m.theme.Out.Render("Out "+f.Currency(totals.Out)),
		m.theme.Bold.Render("Balance "+f.Currency(totals.Balance)))
	if m.view.TotalsErr != nil {
		line += "  " + m.theme.StatusError.Render("(totals unavailable)")
	}

	return m.theme.Header.Render(lipgloss.JoinVertical(lipgloss.Left, title, line))
}

func (m Model) renderList() string {
	if len(m.entries) == 0 {
		return m.theme.Subtle.Render("No transactions yet. Press a to add one.")
	}

	end := min(m.offset+m.listHeight(), len(m.entries))
	lines := make([]string, 0, end-m.offset+1)
	lines = append(lines, m.theme.Subtle.Render(fmt.Sprintf("%-16s  %-18s  %18s  %s", "Date", "Category", "Amount", "Note")))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderEntry(m.entries[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEntry(e history.Entry, selected bool) string {
	amount := m.deps.Formatter.Signed(e.Direction, e.Transaction.DisplayAmount())
	amountStyle := m.theme.Out
	if e.Direction == model.DirectionIn {
		amountStyle = m.theme.In
	}

	row := fmt.Sprintf("%-16s  %-18s  %s  %s",
		e.DateText(),
		truncate(e.Label, 18),
		amountStyle.Render(fmt.Sprintf("%18s", amount)),
		truncate(e.Transaction.Note, max(m.width-60, 10)))
	if selected {
		return m.theme.Selected.Render("> " + row)
	}
	return "  " + row
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func (m Model) renderStatus() string {
	switch {
	case m.status == "":
		return ""
	case m.statusOK:
		return m.theme.StatusSuccess.Render(m.status)
	default:
		return m.theme.StatusError.Render(m.status)
	}
}

func (m Model) renderForm() string {
	form := m.editor.Form()
	title := "New transaction"
	if form.Mode == editor.ModeEdit {
		title = "Edit transaction"
	}

	category := history.FilterLabel(form.CategoryID, m.view.Categories)
	if form.CategoryID == "" {
		category = "(none)"
	}
	direction := "Money in"
	if form.Direction == model.DirectionOut {
		direction = "Money out"
	}

	values := map[formField]string{
		fieldDirection: "‹ " + direction + " ›",
		fieldCategory:  "‹ " + category + " ›",
		fieldAmount:    m.form.amount.View(),
		fieldNote:      m.form.note.View(),
		fieldDate:      m.form.date.View(),
	}

	rows := []string{m.theme.Title.Render(title), ""}
	for f := fieldDirection; f < fieldCount; f++ {
		labelStyle := m.theme.Field
		if f == m.form.focus {
			labelStyle = m.theme.FocusedField
		}
		rows = append(rows, labelStyle.Render(fmt.Sprintf("%-10s", f.label()))+" "+values[f])
	}

	hint := "Tab next field · ←/→ change · Enter save · Esc cancel"
	if form.Mode == editor.ModeEdit {
		hint += " · Ctrl+D delete"
	}
	rows = append(rows, "", m.theme.Subtle.Render(hint))
	if status := m.renderStatus(); status != "" {
		rows = append(rows, status)
	}

	return m.theme.Box.Render(strings.Join(rows, "\n"))
}

func (m Model) renderConfirm() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Delete this transaction?"),
		"",
		m.theme.Subtle.Render("y delete · n keep"),
	)
	return m.theme.Box.Render(body)
}

func (m Model) renderHelp() string {
	full := m.help
	full.ShowAll = true
	return m.theme.Box.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Keys"),
		"",
		full.View(m.keymap),
	))
}

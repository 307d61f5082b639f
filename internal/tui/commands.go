package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/the-ledger-must-balance/internal/export"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// task runs fn under a context derived from the session. The context
// stays live until Update consumes the result, so tearing the session
// down marks every in-flight result stale.
func (m Model) task(fn func(ctx context.Context) any) tea.Cmd {
	ctx, cancel := context.WithCancel(m.session)
	return func() tea.Msg {
		return taskResultMsg{ctx: ctx, cancel: cancel, result: fn(ctx)}
	}
}

func (m Model) loadHistory(force bool) tea.Cmd {
	return m.task(func(ctx context.Context) any {
		return historyLoadedMsg{err: m.deps.History.Load(ctx, force)}
	})
}

func (m Model) refreshHistory() tea.Cmd {
	return m.task(func(ctx context.Context) any {
		return historyLoadedMsg{err: m.deps.History.Refresh(ctx)}
	})
}

func (m Model) changeFilter(filter string) tea.Cmd {
	return m.task(func(ctx context.Context) any {
		_, err := m.deps.History.SetFilter(ctx, filter)
		return filterChangedMsg{filter: filter, err: err}
	})
}

func (m Model) submitForm() tea.Cmd {
	return m.task(func(ctx context.Context) any {
		return formSubmittedMsg{err: m.editor.Submit(ctx)}
	})
}

// deleteTransaction runs the delete workflow after the user already
// confirmed in the modal.
func (m Model) deleteTransaction() tea.Cmd {
	confirmed := service.ConfirmFunc(func(context.Context, string) (bool, error) {
		return true, nil
	})
	return m.task(func(ctx context.Context) any {
		return transactionDeletedMsg{err: m.editor.Delete(ctx, confirmed)}
	})
}

func (m Model) exportHistory() tea.Cmd {
	view := m.view
	return m.task(func(ctx context.Context) any {
		outcome, err := m.deps.Exporter.Export(ctx, export.Request{
			FilterKey:    view.Filter,
			FilterLabel:  view.FilterLabel,
			Transactions: view.Transactions,
			Categories:   view.Categories,
			Totals:       view.Totals,
		})
		return exportFinishedMsg{outcome: outcome, err: err}
	})
}

package tui

import (
	"context"

	"github.com/Veraticus/the-ledger-must-balance/internal/export"
)

// taskResultMsg wraps the outcome of a background workflow with the
// context it ran under. Results whose context is done are dropped.
type taskResultMsg struct {
	ctx    context.Context
	cancel context.CancelFunc
	result any
}

// Workflow results.
type historyLoadedMsg struct {
	err error
}

type filterChangedMsg struct {
	err    error
	filter string
}

type formSubmittedMsg struct {
	err error
}

type transactionDeletedMsg struct {
	err error
}

type exportFinishedMsg struct {
	err     error
	outcome export.Outcome
}

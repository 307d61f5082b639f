package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/editor"
	"github.com/Veraticus/the-ledger-must-balance/internal/export"
	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/money"
	"github.com/Veraticus/the-ledger-must-balance/internal/tui/themes"
)

// Screen is the active part of the UI.
type Screen int

const (
	ScreenList Screen = iota
	ScreenForm
	ScreenConfirmDelete
	ScreenHelp
)

// Deps are the workflows the browser drives.
type Deps struct {
	History   *history.Engine
	Exporter  *export.Exporter
	Formatter money.Formatter
	Theme     themes.Theme
	// NewEditor builds the edit workflow reporting to the given notifier.
	NewEditor func(n *Notices) *editor.Editor
}

// Notices collects workflow notifications until the UI shows them.
type Notices struct {
	pending []notice
	mu      sync.Mutex
}

type notice struct {
	err     error
	message string
}

// Success implements service.Notifier.
func (n *Notices) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, notice{message: message})
}

// Failure implements service.Notifier.
func (n *Notices) Failure(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, notice{err: err})
}

func (n *Notices) drain() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}

// Model holds the browser state.
type Model struct {
	session   context.Context
	cancel    context.CancelFunc
	deps      Deps
	editor    *editor.Editor
	notices   *Notices
	keymap    KeyMap
	help      help.Model
	theme     themes.Theme
	status    string
	form      formModel
	view      history.View
	entries   []history.Entry
	statusOK  bool
	cursor    int
	offset    int
	width     int
	height    int
	screen    Screen
	previous  Screen
	loading   bool
	busy      bool
	exporting bool
	quitting  bool
}

// New creates the browser model. Canceling ctx, or quitting, cancels
// every running workflow.
func New(ctx context.Context, deps Deps) Model {
	session, cancel := context.WithCancel(ctx)
	notices := &Notices{}
	return Model{
		session: session,
		cancel:  cancel,
		deps:    deps,
		editor:  deps.NewEditor(notices),
		notices: notices,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		theme:   deps.Theme,
		screen:  ScreenList,
		loading: true,
		width:   100,
		height:  30,
	}
}

// Init starts loading the history.
func (m Model) Init() tea.Cmd {
	return m.loadHistory(false)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case taskResultMsg:
		if msg.ctx.Err() != nil {
			return m, nil
		}
		msg.cancel()
		return m.handleResult(msg.result)

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			return m.quit()
		}
		if key.Matches(msg, m.keymap.ClearScreen) {
			return m, tea.ClearScreen
		}
		switch m.screen {
		case ScreenForm:
			return m.updateForm(msg)
		case ScreenConfirmDelete:
			return m.updateConfirm(msg)
		case ScreenHelp:
			if key.Matches(msg, m.keymap.ToggleHelp, m.keymap.Cancel, m.keymap.Quit) {
				m.screen = m.previous
			}
			return m, nil
		default:
			return m.updateList(msg)
		}
	}

	if m.screen == ScreenForm && !m.busy {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

func (m *Model) setStatus(text string, ok bool) {
	m.status, m.statusOK = text, ok
}

func (m *Model) setError(err error) {
	m.setStatus(common.Describe(err), false)
}

// showNotices moves workflow notifications into the status line.
func (m *Model) showNotices() {
	for _, n := range m.notices.drain() {
		if n.err != nil {
			m.setError(n.err)
		} else {
			m.setStatus(n.message, true)
		}
	}
}

// syncView copies the engine state into the model.
func (m *Model) syncView() {
	m.view = m.deps.History.View()
	m.entries = m.view.Entries()
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) handleResult(result any) (tea.Model, tea.Cmd) {
	switch r := result.(type) {
	case historyLoadedMsg:
		m.loading = false
		m.syncView()
		switch {
		case r.err != nil:
			m.setError(r.err)
		case m.view.TotalsErr != nil:
			m.setError(m.view.TotalsErr)
		default:
			m.setStatus(fmt.Sprintf("%d transactions", len(m.entries)), true)
		}

	case filterChangedMsg:
		m.syncView()
		m.cursor, m.offset = 0, 0
		if r.err != nil {
			m.setError(r.err)
		} else {
			m.setStatus("Showing "+m.view.FilterLabel, true)
		}

	case formSubmittedMsg:
		m.busy = false
		m.finishMutation(r.err)

	case transactionDeletedMsg:
		m.busy = false
		m.finishMutation(r.err)

	case exportFinishedMsg:
		m.exporting = false
		m.showExport(r.outcome, r.err)
	}
	return m, nil
}

// finishMutation returns to the list when the editor closed, or keeps the
// form open so the user can retry.
func (m *Model) finishMutation(err error) {
	m.syncView()
	if m.editor.State() == editor.StateClosed {
		m.screen = ScreenList
	} else {
		m.screen = ScreenForm
	}
	m.showNotices()
	if err != nil && !errors.Is(err, common.ErrBusy) {
		m.setError(err)
	}
}

func (m *Model) showExport(outcome export.Outcome, err error) {
	switch {
	case err != nil:
		m.setError(err)
	case outcome.Link != "":
		m.setStatus("Shared via "+outcome.SharedVia+": "+outcome.Link, true)
	case outcome.Unshared() != nil:
		m.setStatus("Saved to "+outcome.Path, true)
	default:
		m.setStatus("Opened "+outcome.Path, true)
	}
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.ToggleHelp):
		m.previous, m.screen = m.screen, ScreenHelp
	case key.Matches(msg, k.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, k.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, k.PageUp):
		m.cursor -= m.listHeight()
		m.clampCursor()
	case key.Matches(msg, k.PageDown):
		m.cursor += m.listHeight()
		m.clampCursor()
	case key.Matches(msg, k.Home):
		m.cursor = 0
		m.clampCursor()
	case key.Matches(msg, k.End):
		m.cursor = len(m.entries) - 1
		m.clampCursor()
	case key.Matches(msg, k.NextFilter):
		return m, m.changeFilter(history.NextFilter(m.view.Categories, m.view.Filter, 1))
	case key.Matches(msg, k.PrevFilter):
		return m, m.changeFilter(history.NextFilter(m.view.Categories, m.view.Filter, -1))
	case key.Matches(msg, k.Refresh):
		m.setStatus("Refreshing...", true)
		return m, m.refreshHistory()
	case key.Matches(msg, k.Export):
		if m.exporting {
			m.setError(common.ErrBusy)
			return m, nil
		}
		m.exporting = true
		m.setStatus("Exporting...", true)
		return m, m.exportHistory()
	case key.Matches(msg, k.Add):
		return m.openForm(m.editor.OpenForCreate(m.view.Categories))
	case key.Matches(msg, k.Edit):
		if len(m.entries) == 0 {
			return m, nil
		}
		return m.openForm(m.editor.OpenForEdit(m.entries[m.cursor].Transaction, m.view.Categories))
	}
	return m, nil
}

func (m Model) openForm(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.form = newFormModel(m.editor.Form())
	m.screen = ScreenForm
	m.setStatus("", true)
	return m, textinput.Blink
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		m.setError(common.ErrBusy)
		return m, nil
	}
	k := m.keymap

	switch {
	case key.Matches(msg, k.Cancel):
		if err := m.editor.Close(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.screen = ScreenList
		return m, nil

	case key.Matches(msg, k.Submit):
		if err := m.form.apply(m.editor); err != nil {
			m.setError(err)
			return m, nil
		}
		m.busy = true
		m.setStatus("Saving...", true)
		return m, m.submitForm()

	case key.Matches(msg, k.Delete):
		if m.editor.Form().Mode != editor.ModeEdit {
			return m, nil
		}
		m.screen = ScreenConfirmDelete
		return m, nil

	case key.Matches(msg, k.NextField):
		return m, m.form.move(1)

	case key.Matches(msg, k.PrevField):
		return m, m.form.move(-1)
	}

	switch m.form.focus {
	case fieldDirection:
		if key.Matches(msg, k.Left, k.Right) {
			if err := m.editor.ToggleDirection(); err != nil {
				m.setError(err)
			}
		}
		return m, nil
	case fieldCategory:
		step := 0
		switch {
		case key.Matches(msg, k.Left):
			step = -1
		case key.Matches(msg, k.Right):
			step = 1
		}
		if step != 0 {
			m.cycleCategory(step)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// cycleCategory moves the form's category through the list, wrapping.
func (m *Model) cycleCategory(step int) {
	categories := m.view.Categories
	if len(categories) == 0 {
		return
	}
	i := history.CategoryIndex(categories, m.editor.Form().CategoryID)
	if i < 0 {
		i = 0
	} else {
		i = (i + step + len(categories)) % len(categories)
	}
	if err := m.editor.SetCategory(categories[i].ID); err != nil {
		m.setError(err)
	}
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ConfirmYes):
		m.busy = true
		m.screen = ScreenForm
		m.setStatus("Deleting...", true)
		return m, m.deleteTransaction()
	case key.Matches(msg, m.keymap.ConfirmNo):
		m.screen = ScreenForm
	}
	return m, nil
}

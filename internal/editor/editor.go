// Package editor implements the create/update/delete workflow for a single
// transaction as a small state machine.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/money"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// State is the workflow state.
type State int

// Workflow states.
const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mode says whether the form creates a new transaction or edits one.
type Mode int

// Form modes.
const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Form holds the editable fields.
type Form struct {
	Date       time.Time
	ID         string
	Amount     string
	Note       string
	CategoryID string
	Direction  model.Direction
	Mode       Mode
}

// Refresher reloads the history after a successful mutation.
type Refresher interface {
	ReloadTransactions(ctx context.Context, force bool) error
	RefreshTotals(ctx context.Context) (model.Totals, error)
}

// Editor drives one transaction form. Fields can be changed only while the
// form is open; submitting locks them until the gateway answers.
type Editor struct {
	gateway  service.TransactionGateway
	cache    service.TransactionCache
	history  Refresher
	notifier service.Notifier
	logger   *slog.Logger
	now      func() time.Time
	original *model.Stamp
	form     Form
	state    State
	mu       sync.Mutex
}

// Option configures an Editor.
type Option func(*Editor)

// WithNotifier sets where workflow outcomes are reported.
func WithNotifier(n service.Notifier) Option {
	return func(e *Editor) {
		e.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// New creates a closed editor.
func New(gateway service.TransactionGateway, cache service.TransactionCache, history Refresher, opts ...Option) *Editor {
	e := &Editor{
		gateway:  gateway,
		cache:    cache,
		history:  history,
		notifier: service.NopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = common.LoggerOrDefault(e.logger)
	return e
}

// State returns the current state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Form returns a copy of the current fields.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// OpenForCreate opens an empty form: money in, no amount, the first
// category, today's date.
func (e *Editor) OpenForCreate(categories []model.Category) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSubmitting {
		return common.ErrBusy
	}

	form := Form{
		Mode:      ModeCreate,
		Direction: model.DirectionIn,
		Date:      today(e.now()),
	}
	if len(categories) > 0 {
		form.CategoryID = categories[0].ID
	}

	e.form, e.original, e.state = form, nil, StateOpen
	return nil
}

// OpenForEdit loads tx into the form.
func (e *Editor) OpenForEdit(tx model.Transaction, categories []model.Category) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSubmitting {
		return common.ErrBusy
	}

	form := Form{
		Mode:       ModeEdit,
		ID:         tx.ID,
		Direction:  tx.Direction(),
		Amount:     tx.DisplayAmount().String(),
		Note:       tx.Note,
		CategoryID: tx.CategoryID,
	}
	if form.CategoryID == "" && len(categories) > 0 {
		form.CategoryID = categories[0].ID
	}

	original := tx.EditStamp()
	if original != nil {
		form.Date = original.Time.Local()
		if original.DateOnly {
			form.Date = original.Day()
		}
	} else {
		form.Date = today(e.now())
	}

	e.form, e.original, e.state = form, original, StateOpen
	return nil
}

// edit applies fn to the form if it is open.
func (e *Editor) edit(fn func(*Form)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateClosed:
		return common.ErrNotOpen
	case StateSubmitting:
		return common.ErrBusy
	}
	fn(&e.form)
	return nil
}

// SetDirection switches between money in and money out.
func (e *Editor) SetDirection(d model.Direction) error {
	if !d.Valid() {
		return common.NewValidationError("direction", fmt.Sprintf("unknown direction %q", d))
	}
	return e.edit(func(f *Form) { f.Direction = d })
}

// ToggleDirection flips the direction.
func (e *Editor) ToggleDirection() error {
	return e.edit(func(f *Form) { f.Direction = f.Direction.Opposite() })
}

// SetAmount sets the raw amount text. It is validated on submit.
func (e *Editor) SetAmount(amount string) error {
	return e.edit(func(f *Form) { f.Amount = amount })
}

// SetNote sets the note.
func (e *Editor) SetNote(note string) error {
	return e.edit(func(f *Form) { f.Note = note })
}

// SetCategory selects a category id.
func (e *Editor) SetCategory(id string) error {
	return e.edit(func(f *Form) { f.CategoryID = id })
}

// SetDate moves the form to another calendar day, keeping its time of day.
func (e *Editor) SetDate(day time.Time) error {
	return e.edit(func(f *Form) {
		y, m, d := day.Date()
		f.Date = time.Date(y, m, d,
			f.Date.Hour(), f.Date.Minute(), f.Date.Second(), f.Date.Nanosecond(),
			f.Date.Location())
	})
}

// Close discards the form. It is refused while a submission is running.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateSubmitting {
		return common.ErrBusy
	}
	e.reset()
	return nil
}

func (e *Editor) reset() {
	e.form, e.original, e.state = Form{}, nil, StateClosed
}

// validate checks the form and builds the draft. It must be called with
// the lock held.
func (e *Editor) validate() (model.TransactionDraft, error) {
	f := e.form

	if strings.TrimSpace(f.Amount) == "" {
		return model.TransactionDraft{}, common.NewValidationError("amount", "is required")
	}
	amount, err := money.Parse(f.Amount)
	if err != nil {
		return model.TransactionDraft{}, common.NewValidationError("amount", "is not a number")
	}
	if !amount.IsPositive() {
		return model.TransactionDraft{}, common.NewValidationError("amount", "must be greater than zero")
	}
	if strings.TrimSpace(f.CategoryID) == "" {
		return model.TransactionDraft{}, common.NewValidationError("category", "is required")
	}
	if f.Mode == ModeEdit && strings.TrimSpace(f.ID) == "" {
		return model.TransactionDraft{}, common.NewValidationError("id", "is required to update a transaction")
	}
	if !f.Direction.Valid() {
		return model.TransactionDraft{}, common.NewValidationError("direction", "is required")
	}

	draft := model.TransactionDraft{
		Direction:  f.Direction,
		Amount:     amount,
		CategoryID: f.CategoryID,
		Note:       strings.TrimSpace(f.Note),
	}
	if f.Mode == ModeCreate {
		draft.At = model.Stamp{Time: e.now()}
	} else {
		draft.At = e.editedStamp()
	}
	return draft, nil
}

// editedStamp encodes the form date for an update. A date-only original
// that the user left on the same day stays date-only.
func (e *Editor) editedStamp() model.Stamp {
	if e.original != nil && e.original.DateOnly {
		oy, om, od := e.original.Time.Date()
		fy, fm, fd := e.form.Date.Date()
		if oy == fy && om == fm && od == fd {
			return model.Stamp{Time: e.original.Day(), DateOnly: true}
		}
	}
	return model.Stamp{Time: e.form.Date}
}

// checkOpen reports why the form cannot be submitted. It must be called
// with the lock held.
func (e *Editor) checkOpen() error {
	switch e.state {
	case StateClosed:
		return common.ErrNotOpen
	case StateSubmitting:
		return common.ErrBusy
	}
	return nil
}

// fail returns the form to open after a failed gateway call.
func (e *Editor) fail(err error) error {
	e.mu.Lock()
	e.state = StateOpen
	e.mu.Unlock()

	e.notifier.Failure(err)
	return err
}

// Submit validates the form and sends it to the gateway. Validation
// failures make no network call and leave the form open. On success the
// cache is invalidated, the history reloaded and the form closed.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if err := e.checkOpen(); err != nil {
		e.mu.Unlock()
		return err
	}
	draft, err := e.validate()
	if err != nil {
		e.mu.Unlock()
		e.notifier.Failure(err)
		return err
	}
	form := e.form
	e.state = StateSubmitting
	e.mu.Unlock()

	var message string
	if form.Mode == ModeCreate {
		err = e.gateway.CreateTransaction(ctx, draft)
		message = "Transaction added"
	} else {
		err = e.gateway.UpdateTransaction(ctx, form.ID, draft)
		message = "Transaction updated"
	}
	if err != nil {
		e.logger.Warn("transaction write failed", "mode", form.Mode, "id", form.ID, "error", err)
		return e.fail(err)
	}

	e.afterMutation(ctx, form.Mode == ModeEdit)
	e.notifier.Success(message)
	return nil
}

// Delete removes the transaction being edited after confirm agrees. A
// refusal leaves the form open and is not an error.
func (e *Editor) Delete(ctx context.Context, confirm service.Confirmer) error {
	e.mu.Lock()
	if err := e.checkOpen(); err != nil {
		e.mu.Unlock()
		return err
	}
	if strings.TrimSpace(e.form.ID) == "" {
		e.mu.Unlock()
		err := common.NewValidationError("id", "is required to delete a transaction")
		e.notifier.Failure(err)
		return err
	}
	form := e.form
	e.state = StateSubmitting
	e.mu.Unlock()

	ok, err := confirm.Confirm(ctx, "Delete this transaction?")
	if err != nil || !ok {
		e.mu.Lock()
		e.state = StateOpen
		e.mu.Unlock()
		return err
	}

	if err := e.gateway.DeleteTransaction(ctx, form.ID); err != nil {
		e.logger.Warn("transaction delete failed", "id", form.ID, "error", err)
		return e.fail(err)
	}

	e.afterMutation(ctx, true)
	e.notifier.Success("Transaction deleted")
	return nil
}

// afterMutation invalidates the cache, reloads the history and closes the
// form. Reload failures are reported but do not undo the mutation.
func (e *Editor) afterMutation(ctx context.Context, withTotals bool) {
	e.cache.Invalidate(ctx)

	if err := e.history.ReloadTransactions(ctx, false); err != nil {
		e.logger.Warn("failed to reload transactions after write", "error", err)
		e.notifier.Failure(err)
	}
	if withTotals {
		if _, err := e.history.RefreshTotals(ctx); err != nil {
			e.logger.Warn("failed to refresh totals after write", "error", err)
			e.notifier.Failure(err)
		}
	}

	e.mu.Lock()
	e.reset()
	e.mu.Unlock()
}

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/editor"
)

// formField identifies a row of the edit modal.
type formField int

const (
	fieldDirection formField = iota
	fieldCategory
	fieldAmount
	fieldNote
	fieldDate
	fieldCount
)

func (f formField) label() string {
	switch f {
	case fieldDirection:
		return "Direction"
	case fieldCategory:
		return "Category"
	case fieldAmount:
		return "Amount"
	case fieldNote:
		return "Note"
	case fieldDate:
		return "Date"
	default:
		return ""
	}
}

const dateLayout = "2006-01-02"

// formModel holds the text inputs of the edit modal. Direction and
// category live in the editor and are changed through it directly.
type formModel struct {
	amount textinput.Model
	note   textinput.Model
	date   textinput.Model
	focus  formField
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = ""
	in.SetValue(value)
	return in
}

func newFormModel(f editor.Form) formModel {
	form := formModel{
		amount: newInput("0", f.Amount, 24),
		note:   newInput("optional", f.Note, 200),
		date:   newInput(dateLayout, f.Date.Format(dateLayout), len(dateLayout)),
		focus:  fieldAmount,
	}
	form.amount.Focus()
	return form
}

func (f *formModel) input(field formField) *textinput.Model {
	switch field {
	case fieldAmount:
		return &f.amount
	case fieldNote:
		return &f.note
	case fieldDate:
		return &f.date
	default:
		return nil
	}
}

// move shifts focus by step, wrapping around.
func (f *formModel) move(step int) tea.Cmd {
	if in := f.input(f.focus); in != nil {
		in.Blur()
	}
	f.focus = formField((int(f.focus) + step + int(fieldCount)) % int(fieldCount))
	if in := f.input(f.focus); in != nil {
		return in.Focus()
	}
	return nil
}

// update routes a message to the focused text input.
func (f formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	in := f.input(f.focus)
	if in == nil {
		return f, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return f, cmd
}

// apply copies the text inputs into the editor.
func (f formModel) apply(ed *editor.Editor) error {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(f.date.Value()), time.Local)
	if err != nil {
		return common.NewValidationError("date", "use YYYY-MM-DD")
	}
	if err := ed.SetAmount(f.amount.Value()); err != nil {
		return err
	}
	if err := ed.SetNote(f.note.Value()); err != nil {
		return err
	}
	return ed.SetDate(day)
}

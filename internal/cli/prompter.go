package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// Prompter asks yes/no questions on the terminal.
type Prompter struct {
	reader    *NonBlockingReader
	writer    io.Writer
	assumeYes bool
}

var _ service.Confirmer = (*Prompter)(nil)

// NewPrompter creates a prompter. With assumeYes every question is
// answered yes without reading input.
func NewPrompter(reader io.Reader, writer io.Writer, assumeYes bool) *Prompter {
	return &Prompter{
		reader:    NewNonBlockingReader(reader),
		writer:    writer,
		assumeYes: assumeYes,
	}
}

// Confirm implements service.Confirmer. Anything but y or yes is a no,
// including end of input.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt+" [y/N]")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

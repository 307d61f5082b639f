package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// Notifier prints workflow outcomes.
type Notifier struct {
	writer   io.Writer
	failures int
	mu       sync.Mutex
}

var _ service.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier writing to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{writer: w}
}

// Success implements service.Notifier.
func (n *Notifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.writer, FormatSuccess(message))
}

// Failure implements service.Notifier.
func (n *Notifier) Failure(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures++
	_, _ = fmt.Fprintln(n.writer, FormatError(common.Describe(err)))
}

// Failures returns how many failures were reported.
func (n *Notifier) Failures() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.failures
}

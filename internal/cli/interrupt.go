package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// InterruptHandler prints a friendly message when a long-running command
// is canceled before it finishes.
type InterruptHandler struct {
	writer      io.Writer
	done        chan struct{}
	operation   string
	hint        func() string
	interrupted bool
	stopOnce    sync.Once
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer, operation string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer:    writer,
		operation: operation,
		done:      make(chan struct{}),
	}
}

// Watch reports an interruption once ctx is canceled, unless Stop was
// called first. hint, when set, is evaluated at interruption time.
func (h *InterruptHandler) Watch(ctx context.Context, hint func() string) {
	h.hint = hint
	go func() {
		select {
		case <-ctx.Done():
		case <-h.done:
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if !h.interrupted {
			h.interrupted = true
			h.showInterruptMessage()
		}
	}()
}

// Stop ends the watch without reporting anything.
func (h *InterruptHandler) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// showInterruptMessage displays a friendly interrupt message.
func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning(h.operation+" interrupted!")

	if h.hint != nil {
		if hint := h.hint(); hint != "" {
			msg += "\n" + FormatInfo(hint)
		}
	}

	if _, err := fmt.Fprintln(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the watched context was canceled.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

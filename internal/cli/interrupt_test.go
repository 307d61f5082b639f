package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	handler := NewInterruptHandler(nil, "Import")
	assert.NotNil(t, handler.writer)
	assert.False(t, handler.WasInterrupted())
}

func TestInterruptHandler_ReportsCancellation(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Import")

	ctx, cancel := context.WithCancel(context.Background())
	handler.Watch(ctx, func() string {
		return "Posted so far: 3. Continue with --skip 3"
	})

	cancel()

	require.Eventually(t, handler.WasInterrupted, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return strings.Contains(output.String(), "Import interrupted!")
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, output.String(), "Continue with --skip 3")
	assert.Equal(t, 1, strings.Count(output.String(), "interrupted!"))
}

func TestInterruptHandler_StopSilences(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Import")

	ctx, cancel := context.WithCancel(context.Background())
	handler.Watch(ctx, nil)
	handler.Stop()
	handler.Stop()
	cancel()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}

func TestShowInterruptMessage(t *testing.T) {
	tests := []struct {
		name        string
		hint        func() string
		expected    []string
		notExpected []string
	}{
		{
			name:     "with hint",
			hint:     func() string { return "Re-run to continue" },
			expected: []string{"Export interrupted!", "Re-run to continue"},
		},
		{
			name:        "empty hint",
			hint:        func() string { return "" },
			expected:    []string{"Export interrupted!"},
			notExpected: []string{InfoIcon},
		},
		{
			name:        "no hint",
			expected:    []string{"Export interrupted!"},
			notExpected: []string{InfoIcon},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			handler := &InterruptHandler{writer: &output, operation: "Export", hint: tt.hint}

			handler.showInterruptMessage()

			for _, expected := range tt.expected {
				assert.Contains(t, output.String(), expected)
			}
			for _, notExpected := range tt.notExpected {
				assert.NotContains(t, output.String(), notExpected)
			}
		})
	}
}

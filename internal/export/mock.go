package export

import (
	"context"
	"io"
	"sync"
)

// MockWriter is a Writer for tests. Fn, when set, replaces the write.
type MockWriter struct {
	Fn       func(w io.Writer, doc Document) error
	WriterID string
	Docs     []Document
	mu       sync.Mutex
}

// Name implements Writer.
func (m *MockWriter) Name() string {
	if m.WriterID == "" {
		return "mock"
	}
	return m.WriterID
}

// Write implements Writer.
func (m *MockWriter) Write(w io.Writer, doc Document) error {
	m.mu.Lock()
	m.Docs = append(m.Docs, doc)
	m.mu.Unlock()

	if m.Fn != nil {
		return m.Fn(w, doc)
	}
	_, err := io.WriteString(w, "mock workbook")
	return err
}

// Calls returns how many documents were written.
func (m *MockWriter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Docs)
}

// MockSharer is a Sharer for tests.
type MockSharer struct {
	Err      error
	SharerID string
	Link     string
	Paths    []string
	mu       sync.Mutex
}

// Name implements Sharer.
func (m *MockSharer) Name() string { return m.SharerID }

// Share implements Sharer.
func (m *MockSharer) Share(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths = append(m.Paths, path)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Link, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// Validation errors.
var (
	ErrNilContext           = errors.New("context cannot be nil")
	ErrEmptyString          = errors.New("string parameter cannot be empty")
	ErrInvalidCategoryEntry = errors.New("invalid category entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCategoryEntry checks an entry before it is persisted. Synced
// entries live on the server and are never stored locally.
func validateCategoryEntry(entry model.CategoryEntry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidCategoryEntry)
	}
	if strings.TrimSpace(entry.Label) == "" {
		return fmt.Errorf("%w: missing label", ErrInvalidCategoryEntry)
	}
	switch entry.State {
	case model.SyncPending, model.SyncUnsynced:
	default:
		return fmt.Errorf("%w: state %q cannot be stored", ErrInvalidCategoryEntry, entry.State)
	}
	return nil
}

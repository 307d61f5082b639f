package model

import (
	"strings"
	"time"
)

// PlaceholderPrefix marks ids created locally before the server confirms a
// category.
const PlaceholderPrefix = "tmp-"

// FilterAll is the category filter value that selects every transaction.
const FilterAll = "all"

// OtherLabel is shown when a transaction's category cannot be resolved.
const OtherLabel = "Other"

// Category is a user-defined "type/project" label for transactions.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// IsPlaceholder reports whether the category only exists locally.
func (c Category) IsPlaceholder() bool {
	return strings.HasPrefix(c.ID, PlaceholderPrefix)
}

// FindCategory returns the category whose id equals id, compared as strings.
func FindCategory(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// SyncState tracks whether a locally known category matches the server.
type SyncState string

const (
	// SyncSynced means the server holds the same record.
	SyncSynced SyncState = "synced"
	// SyncPending means a write is in flight.
	SyncPending SyncState = "pending"
	// SyncUnsynced means the last write failed and the local record differs
	// from the server.
	SyncUnsynced SyncState = "unsynced"
)

// CategoryEntry is a category as held by the category manager.
type CategoryEntry struct {
	UpdatedAt time.Time `json:"updated_at"`
	Category
	State SyncState `json:"state"`
}

// Package history derives the sorted, filtered transaction history and its
// server-side totals.
package history

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// AllLabel names the unfiltered history.
const AllLabel = "All"

// Sort returns a new slice ordered newest first by each transaction's sort
// time. Transactions with equal sort times keep their fetch order.
func Sort(transactions []model.Transaction) []model.Transaction {
	sorted := slices.Clone(transactions)
	slices.SortStableFunc(sorted, func(a, b model.Transaction) int {
		return b.SortTime().Compare(a.SortTime())
	})
	return sorted
}

// Filter keeps the transactions whose category id equals filter. Ids are
// compared as strings; model.FilterAll keeps everything.
func Filter(transactions []model.Transaction, filter string) []model.Transaction {
	if filter == "" || filter == model.FilterAll {
		return slices.Clone(transactions)
	}

	filtered := make([]model.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.CategoryID == filter {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Label resolves the display label of a transaction's category: the
// category list, then the label sent by the server, then the raw category
// value, then model.OtherLabel.
func Label(t model.Transaction, categories []model.Category) string {
	if c, ok := model.FindCategory(categories, t.CategoryID); ok && c.Label != "" {
		return c.Label
	}
	for _, candidate := range []string{t.CategoryLabel, t.CategoryID} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return model.OtherLabel
}

// FilterLabel names the active filter for headings and export titles.
func FilterLabel(filter string, categories []model.Category) string {
	if filter == "" || filter == model.FilterAll {
		return AllLabel
	}
	if c, ok := model.FindCategory(categories, filter); ok && c.Label != "" {
		return c.Label
	}
	return filter
}

// Entry is a transaction prepared for display.
type Entry struct {
	When        *model.Stamp
	Label       string
	Direction   model.Direction
	Transaction model.Transaction
}

// Entries prepares transactions for display, keeping their order.
func Entries(transactions []model.Transaction, categories []model.Category) []Entry {
	entries := make([]Entry, len(transactions))
	for i, t := range transactions {
		entries[i] = Entry{
			Transaction: t,
			Label:       Label(t, categories),
			Direction:   t.Direction(),
			When:        t.DisplayStamp(),
		}
	}
	return entries
}

// DateText formats the display date, omitting the time for date-only
// values.
func (e Entry) DateText() string {
	if e.When == nil {
		return "-"
	}
	if e.When.DateOnly {
		return e.When.Time.Format("2006-01-02")
	}
	return e.When.Time.Local().Format("2006-01-02 15:04")
}

// CategoryIndex returns the position of id in categories, or -1.
func CategoryIndex(categories []model.Category, id string) int {
	return slices.IndexFunc(categories, func(c model.Category) bool { return c.ID == id })
}

// FilterKeys lists the filters a user can cycle through: model.FilterAll,
// then every category id in list order.
func FilterKeys(categories []model.Category) []string {
	keys := make([]string, 0, len(categories)+1)
	keys = append(keys, model.FilterAll)
	for _, c := range categories {
		keys = append(keys, c.ID)
	}
	return keys
}

// NextFilter returns the filter after current in FilterKeys order, wrapping
// around. A step of -1 moves backwards.
func NextFilter(categories []model.Category, current string, step int) string {
	keys := FilterKeys(categories)
	i := slices.Index(keys, cmp.Or(current, model.FilterAll))
	if i < 0 {
		return model.FilterAll
	}
	n := len(keys)
	return keys[((i+step)%n+n)%n]
}

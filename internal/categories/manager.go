// Package categories manages the category list with optimistic local
// writes. Every entry carries its sync state, so a failed server write
// leaves a visible unsynced entry instead of a silent divergence.
package categories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// Manager holds the local category list.
type Manager struct {
	gateway service.CategoryGateway
	store   service.CategoryStore
	logger  *slog.Logger
	newID   func() string
	now     func() time.Time
	entries []model.CategoryEntry
	mu      sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore persists unconfirmed entries between runs.
func WithStore(store service.CategoryStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithIDGenerator overrides placeholder id generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// New creates a manager with an empty list. Call Load to populate it.
func New(gateway service.CategoryGateway, opts ...Option) *Manager {
	m := &Manager{
		gateway: gateway,
		newID:   func() string { return uuid.NewString() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = common.LoggerOrDefault(m.logger)
	return m
}

// Entries returns a copy of the list with sync states.
func (m *Manager) Entries() []model.CategoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries)
}

// Categories returns the list without sync states.
func (m *Manager) Categories() []model.Category {
	m.mu.Lock()
	defer m.mu.Unlock()

	categories := make([]model.Category, len(m.entries))
	for i, e := range m.entries {
		categories[i] = e.Category
	}
	return categories
}

// Unsynced counts entries whose last write failed.
func (m *Manager) Unsynced() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.entries {
		if e.State == model.SyncUnsynced {
			n++
		}
	}
	return n
}

// Load replaces the list from the server and reapplies local entries that
// the server has not confirmed. When the server cannot be reached the
// local entries are still loaded and the error is returned.
func (m *Manager) Load(ctx context.Context) error {
	local := m.localEntries(ctx)

	remote, err := m.gateway.ListCategories(ctx)
	if err != nil {
		m.logger.Warn("failed to load categories", "error", err)
		m.mu.Lock()
		m.entries = mergeEntries(m.entries, local)
		m.mu.Unlock()
		return err
	}

	entries := make([]model.CategoryEntry, len(remote))
	for i, c := range remote {
		entries[i] = model.CategoryEntry{Category: c, State: model.SyncSynced}
	}

	for _, e := range local {
		if i := indexOf(entries, e.ID); i >= 0 {
			entries[i].Label, entries[i].State = e.Label, e.State
			continue
		}
		if e.IsPlaceholder() {
			entries = append([]model.CategoryEntry{e}, entries...)
			continue
		}
		m.logger.Info("dropping local edit of a category the server no longer has", "id", e.ID)
		m.forget(ctx, e.ID)
	}

	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

// localEntries collects unconfirmed entries from memory and the store.
// Memory wins when both hold the same id. A stored entry still marked
// pending lost its request with an earlier process and is unsynced now.
func (m *Manager) localEntries(ctx context.Context) []model.CategoryEntry {
	m.mu.Lock()
	var local []model.CategoryEntry
	for _, e := range m.entries {
		if e.State != model.SyncSynced {
			local = append(local, e)
		}
	}
	m.mu.Unlock()

	if m.store == nil {
		return local
	}
	stored, err := m.store.ListCategoryEntries(ctx)
	if err != nil {
		m.logger.Warn("failed to read stored categories", "error", err)
		return local
	}
	for _, e := range stored {
		if indexOf(local, e.ID) >= 0 {
			continue
		}
		if e.State == model.SyncPending {
			e.State = model.SyncUnsynced
		}
		local = append(local, e)
	}
	return local
}

// mergeEntries adds extra entries that current does not hold yet.
func mergeEntries(current, extra []model.CategoryEntry) []model.CategoryEntry {
	merged := slices.Clone(current)
	for _, e := range extra {
		if indexOf(merged, e.ID) < 0 {
			merged = append(merged, e)
		}
	}
	return merged
}

func indexOf(entries []model.CategoryEntry, id string) int {
	return slices.IndexFunc(entries, func(e model.CategoryEntry) bool { return e.ID == id })
}

func cleanLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", common.NewValidationError("label", "is required")
	}
	return label, nil
}

// Create adds a category. A placeholder appears at the front of the list
// immediately and is replaced by the server record once confirmed. If the
// server write fails the placeholder stays, marked unsynced.
func (m *Manager) Create(ctx context.Context, label string) (model.CategoryEntry, error) {
	label, err := cleanLabel(label)
	if err != nil {
		return model.CategoryEntry{}, err
	}

	placeholder := model.CategoryEntry{
		Category:  model.Category{ID: model.PlaceholderPrefix + m.newID(), Label: label},
		State:     model.SyncPending,
		UpdatedAt: m.now(),
	}
	m.mu.Lock()
	m.entries = append([]model.CategoryEntry{placeholder}, m.entries...)
	m.mu.Unlock()
	m.persist(ctx, placeholder)

	return m.confirmCreate(ctx, placeholder)
}

// confirmCreate posts a placeholder and applies the server's answer.
func (m *Manager) confirmCreate(ctx context.Context, placeholder model.CategoryEntry) (model.CategoryEntry, error) {
	created, err := m.gateway.CreateCategory(ctx, placeholder.Label)
	if err != nil {
		placeholder.State = model.SyncUnsynced
		placeholder.UpdatedAt = m.now()
		m.replace(placeholder.ID, placeholder)
		m.persist(ctx, placeholder)
		return placeholder, err
	}

	if created == nil {
		// The write went through but the answer cannot be matched to the
		// placeholder, so take the server's list as the truth.
		m.remove(placeholder.ID)
		m.forget(ctx, placeholder.ID)
		if err := m.Load(ctx); err != nil {
			return model.CategoryEntry{}, err
		}
		return m.findByLabel(placeholder.Label), nil
	}

	confirmed := model.CategoryEntry{Category: *created, State: model.SyncSynced, UpdatedAt: m.now()}
	if confirmed.Label == "" {
		confirmed.Label = placeholder.Label
	}
	m.replace(placeholder.ID, confirmed)
	m.forget(ctx, placeholder.ID)
	return confirmed, nil
}

func (m *Manager) findByLabel(label string) model.CategoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Label == label && !e.IsPlaceholder() {
			return e
		}
	}
	return model.CategoryEntry{}
}

// Update renames a category. The new label is applied locally first and
// kept, marked unsynced, if the server write fails.
func (m *Manager) Update(ctx context.Context, id, label string) error {
	label, err := cleanLabel(label)
	if err != nil {
		return err
	}

	m.mu.Lock()
	i := indexOf(m.entries, id)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("category %q: %w", id, common.ErrNotFound)
	}
	entry := m.entries[i]
	entry.Label = label
	entry.UpdatedAt = m.now()
	if entry.IsPlaceholder() {
		// Not on the server yet; Sync creates it with the new label.
		m.entries[i] = entry
		m.mu.Unlock()
		m.persist(ctx, entry)
		return nil
	}
	entry.State = model.SyncPending
	m.entries[i] = entry
	m.mu.Unlock()
	m.persist(ctx, entry)

	return m.confirmUpdate(ctx, entry)
}

func (m *Manager) confirmUpdate(ctx context.Context, entry model.CategoryEntry) error {
	if err := m.gateway.UpdateCategory(ctx, entry.ID, entry.Label); err != nil {
		entry.State = model.SyncUnsynced
		m.replace(entry.ID, entry)
		m.persist(ctx, entry)
		return err
	}

	entry.State = model.SyncSynced
	m.replace(entry.ID, entry)
	m.forget(ctx, entry.ID)
	return nil
}

// Delete removes a category locally and on the server. Placeholders never
// reach the server. When the server refuses, the list is reloaded from it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	i := indexOf(m.entries, id)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("category %q: %w", id, common.ErrNotFound)
	}
	entry := m.entries[i]
	m.entries = slices.Delete(m.entries, i, i+1)
	m.mu.Unlock()
	m.forget(ctx, id)

	if entry.IsPlaceholder() {
		return nil
	}

	if err := m.gateway.DeleteCategory(ctx, id); err != nil {
		m.logger.Warn("category delete failed, reloading from server", "id", id, "error", err)
		if loadErr := m.Load(ctx); loadErr != nil {
			m.logger.Warn("resync after failed delete also failed", "error", loadErr)
		}
		return err
	}
	return nil
}

// Sync retries every unsynced entry once. It returns how many entries were
// confirmed and the joined errors of those that failed again.
func (m *Manager) Sync(ctx context.Context) (int, error) {
	var pending []model.CategoryEntry
	for _, e := range m.Entries() {
		if e.State == model.SyncUnsynced {
			pending = append(pending, e)
		}
	}

	var (
		synced int
		errs   []error
	)
	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var err error
		if e.IsPlaceholder() {
			_, err = m.confirmCreate(ctx, e)
		} else {
			err = m.confirmUpdate(ctx, e)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Label, err))
			continue
		}
		synced++
	}

	return synced, errors.Join(errs...)
}

func (m *Manager) replace(id string, entry model.CategoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.entries, id); i >= 0 {
		m.entries[i] = entry
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.entries, id); i >= 0 {
		m.entries = slices.Delete(m.entries, i, i+1)
	}
}

func (m *Manager) persist(ctx context.Context, entry model.CategoryEntry) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveCategoryEntry(ctx, entry); err != nil {
		m.logger.Warn("failed to persist category", "id", entry.ID, "error", err)
	}
}

func (m *Manager) forget(ctx context.Context, id string) {
	if m.store == nil {
		return
	}
	if err := m.store.DeleteCategoryEntry(ctx, id); err != nil {
		m.logger.Warn("failed to remove stored category", "id", id, "error", err)
	}
}

package gateway

import (
	"context"
	"slices"
	"sync"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// MockGateway is an in-memory implementation of service.Gateway for tests.
// Each Fn field overrides the default behavior of its method; every call is
// recorded.
type MockGateway struct {
	ListCategoriesFn    func(ctx context.Context) ([]model.Category, error)
	CreateCategoryFn    func(ctx context.Context, label string) (*model.Category, error)
	UpdateCategoryFn    func(ctx context.Context, id, label string) error
	DeleteCategoryFn    func(ctx context.Context, id string) error
	ListTransactionsFn  func(ctx context.Context) ([]model.Transaction, error)
	CreateTransactionFn func(ctx context.Context, draft model.TransactionDraft) error
	UpdateTransactionFn func(ctx context.Context, id string, draft model.TransactionDraft) error
	DeleteTransactionFn func(ctx context.Context, id string) error
	TotalsFn            func(ctx context.Context, filter string) (model.Totals, error)

	Categories   []model.Category
	Transactions []model.Transaction
	TotalsByKey  map[string]model.Totals

	Calls        []string
	Drafts       []MockDraftCall
	TotalsCalls  []string
	DeletedIDs   []string
	ListTxCalls  int
	ListCatCalls int

	mu sync.Mutex
}

// MockDraftCall records a create or update call.
type MockDraftCall struct {
	Draft model.TransactionDraft
	ID    string // empty for creates
}

var _ service.Gateway = (*MockGateway)(nil)

// NewMockGateway creates a mock seeded with the given data.
func NewMockGateway(categories []model.Category, transactions []model.Transaction) *MockGateway {
	return &MockGateway{
		Categories:   categories,
		Transactions: transactions,
		TotalsByKey:  make(map[string]model.Totals),
	}
}

func (m *MockGateway) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// CallCount returns the number of recorded calls to the named method.
func (m *MockGateway) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// TotalCalls returns the number of calls recorded so far.
func (m *MockGateway) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ListCategories implements service.Gateway.
func (m *MockGateway) ListCategories(ctx context.Context) ([]model.Category, error) {
	m.record("ListCategories")
	m.mu.Lock()
	m.ListCatCalls++
	m.mu.Unlock()

	if m.ListCategoriesFn != nil {
		return m.ListCategoriesFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Categories), nil
}

// CreateCategory implements service.Gateway.
func (m *MockGateway) CreateCategory(ctx context.Context, label string) (*model.Category, error) {
	m.record("CreateCategory")
	if m.CreateCategoryFn != nil {
		return m.CreateCategoryFn(ctx, label)
	}
	return &model.Category{ID: label, Label: label}, nil
}

// UpdateCategory implements service.Gateway.
func (m *MockGateway) UpdateCategory(ctx context.Context, id, label string) error {
	m.record("UpdateCategory")
	if m.UpdateCategoryFn != nil {
		return m.UpdateCategoryFn(ctx, id, label)
	}
	return nil
}

// DeleteCategory implements service.Gateway.
func (m *MockGateway) DeleteCategory(ctx context.Context, id string) error {
	m.record("DeleteCategory")
	if m.DeleteCategoryFn != nil {
		return m.DeleteCategoryFn(ctx, id)
	}
	return nil
}

// ListTransactions implements service.Gateway.
func (m *MockGateway) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	m.record("ListTransactions")
	m.mu.Lock()
	m.ListTxCalls++
	m.mu.Unlock()

	if m.ListTransactionsFn != nil {
		return m.ListTransactionsFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Transactions), nil
}

// CreateTransaction implements service.Gateway.
func (m *MockGateway) CreateTransaction(ctx context.Context, draft model.TransactionDraft) error {
	m.record("CreateTransaction")
	m.mu.Lock()
	m.Drafts = append(m.Drafts, MockDraftCall{Draft: draft})
	m.mu.Unlock()

	if m.CreateTransactionFn != nil {
		return m.CreateTransactionFn(ctx, draft)
	}
	return nil
}

// UpdateTransaction implements service.Gateway.
func (m *MockGateway) UpdateTransaction(ctx context.Context, id string, draft model.TransactionDraft) error {
	m.record("UpdateTransaction")
	m.mu.Lock()
	m.Drafts = append(m.Drafts, MockDraftCall{ID: id, Draft: draft})
	m.mu.Unlock()

	if m.UpdateTransactionFn != nil {
		return m.UpdateTransactionFn(ctx, id, draft)
	}
	return nil
}

// DeleteTransaction implements service.Gateway.
func (m *MockGateway) DeleteTransaction(ctx context.Context, id string) error {
	m.record("DeleteTransaction")
	m.mu.Lock()
	m.DeletedIDs = append(m.DeletedIDs, id)
	m.mu.Unlock()

	if m.DeleteTransactionFn != nil {
		return m.DeleteTransactionFn(ctx, id)
	}
	return nil
}

// Totals implements service.Gateway.
func (m *MockGateway) Totals(ctx context.Context, filter string) (model.Totals, error) {
	m.record("Totals")
	m.mu.Lock()
	m.TotalsCalls = append(m.TotalsCalls, filter)
	m.mu.Unlock()

	if m.TotalsFn != nil {
		return m.TotalsFn(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TotalsByKey[filter], nil
}

// SetTransactions replaces the served transaction list.
func (m *MockGateway) SetTransactions(transactions []model.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transactions = transactions
}

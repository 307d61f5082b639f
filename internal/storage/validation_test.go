package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{
			name:      "valid string",
			str:       "test",
			paramName: "param",
			wantErr:   false,
		},
		{
			name:      "empty string",
			str:       "",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			str:       "   ",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "string with spaces",
			str:       "  test  ",
			paramName: "param",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}

func TestValidateCategoryEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   model.CategoryEntry
		wantErr bool
	}{
		{
			name:  "pending placeholder",
			entry: model.CategoryEntry{Category: model.Category{ID: "tmp-1", Label: "Kebun"}, State: model.SyncPending},
		},
		{
			name:  "unsynced server id",
			entry: model.CategoryEntry{Category: model.Category{ID: "4", Label: "Kebun"}, State: model.SyncUnsynced},
		},
		{
			name:    "missing id",
			entry:   model.CategoryEntry{Category: model.Category{Label: "Kebun"}, State: model.SyncPending},
			wantErr: true,
		},
		{
			name:    "blank label",
			entry:   model.CategoryEntry{Category: model.Category{ID: "4", Label: "  "}, State: model.SyncPending},
			wantErr: true,
		},
		{
			name:    "synced",
			entry:   model.CategoryEntry{Category: model.Category{ID: "4", Label: "Kebun"}, State: model.SyncSynced},
			wantErr: true,
		},
		{
			name:    "unknown state",
			entry:   model.CategoryEntry{Category: model.Category{ID: "4", Label: "Kebun"}, State: "lost"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCategoryEntry(tt.entry)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCategoryEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCategoryEntry) {
				t.Errorf("expected ErrInvalidCategoryEntry, got %v", err)
			}
		})
	}
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ledger/internal/core"
)

func TestValidateRecord(t *testing.T) {
	today := core.NewDate(2025, 3, 15)

	tests := []struct {
		name    string
		fields  map[string]string
		wantErr error
		check   func(t *testing.T, tx core.Transaction)
	}{
		{
			name:   "valid record",
			fields: map[string]string{"date": "2025-03-10", "kind": "expense", "amount": "12.34", "category": "food", "description": "lunch"},
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Date.ISO() != "2025-03-10" || tx.Kind != core.Expense ||
					tx.Amount.Cents != 1234 || tx.Category != "food" || tx.Description != "lunch" {
					t.Errorf("unexpected transaction: %+v", tx)
				}
			},
		},
		{
			name:   "empty date defaults to today",
			fields: map[string]string{"date": "", "kind": "income", "amount": "1"},
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Date.ISO() != "2025-03-15" {
					t.Errorf("date = %s, want today", tx.Date.ISO())
				}
			},
		},
		{
			name:   "uppercase kind normalized",
			fields: map[string]string{"date": "", "kind": "INCOME", "amount": "5"},
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Kind != core.Income {
					t.Errorf("kind = %q, want income", tx.Kind)
				}
			},
		},
		{
			name:   "blank category collapses to sentinel",
			fields: map[string]string{"date": "", "kind": "expense", "amount": "5", "category": "   "},
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Category != core.CategoryUncategorized {
					t.Errorf("category = %q, want %q", tx.Category, core.CategoryUncategorized)
				}
			},
		},
		{
			name:    "missing date key",
			fields:  map[string]string{"kind": "expense", "amount": "5"},
			wantErr: core.ErrMissingField,
		},
		{
			name:    "missing amount key",
			fields:  map[string]string{"date": "", "kind": "expense"},
			wantErr: core.ErrMissingField,
		},
		{
			name: "missing field checked before field validation",
			// kind is garbage but the absent amount key must win
			fields:  map[string]string{"date": "", "kind": "garbage"},
			wantErr: core.ErrMissingField,
		},
		{
			name:    "bad date",
			fields:  map[string]string{"date": "15/03/2025", "kind": "expense", "amount": "5"},
			wantErr: core.ErrInvalidDate,
		},
		{
			name:    "bad kind",
			fields:  map[string]string{"date": "", "kind": "transfer", "amount": "5"},
			wantErr: core.ErrInvalidKind,
		},
		{
			name:    "negative amount",
			fields:  map[string]string{"date": "", "kind": "expense", "amount": "-5"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "amount not a number",
			fields:  map[string]string{"date": "", "kind": "expense", "amount": "lots"},
			wantErr: core.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := ValidateRecord(tt.fields, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateRecord error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateRecord unexpected error: %v", err)
			}
			tt.check(t, tx)
		})
	}
}

func TestCollectInteractive(t *testing.T) {
	today := core.NewDate(2025, 3, 15)

	t.Run("full flow", func(t *testing.T) {
		in := strings.NewReader("2025-03-01\nExpense\n25,50\ntravel\nbus ticket\n")
		p := NewIOPrompter(in, &strings.Builder{})

		tx, err := CollectInteractive(context.Background(), p, today)
		if err != nil {
			t.Fatalf("CollectInteractive: %v", err)
		}
		if tx.Date.ISO() != "2025-03-01" || tx.Kind != core.Expense ||
			tx.Amount.Cents != 2550 || tx.Category != "travel" || tx.Description != "bus ticket" {
			t.Errorf("unexpected transaction: %+v", tx)
		}
	})

	t.Run("empty date uses today", func(t *testing.T) {
		in := strings.NewReader("\nincome\n10\n\n\n")
		p := NewIOPrompter(in, &strings.Builder{})

		tx, err := CollectInteractive(context.Background(), p, today)
		if err != nil {
			t.Fatalf("CollectInteractive: %v", err)
		}
		if tx.Date.ISO() != today.ISO() {
			t.Errorf("date = %s, want today", tx.Date.ISO())
		}
		if tx.Category != core.CategoryUncategorized {
			t.Errorf("category = %q, want sentinel", tx.Category)
		}
	})

	t.Run("first failure aborts without consuming later fields", func(t *testing.T) {
		// Bad kind on the second prompt: amount is never solicited.
		in := strings.NewReader("\ntransfer\n10\n")
		out := &strings.Builder{}
		p := NewIOPrompter(in, out)

		_, err := CollectInteractive(context.Background(), p, today)
		if !errors.Is(err, core.ErrInvalidKind) {
			t.Fatalf("CollectInteractive error = %v, want ErrInvalidKind", err)
		}
		if strings.Contains(out.String(), "amount") {
			t.Error("amount was prompted after kind failed")
		}
	})
}

package repository

import (
	"context"

	"expense-ledger/internal/domain"
)

// ExpenseRepository defines persistence operations for Expense entities.
// Every per-user method filters by owner at the store level so that
// cross-user access is impossible rather than merely unintended.
type ExpenseRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, expense *domain.Expense) error
	// ListByUser returns the user's expenses ordered by date descending.
	ListByUser(ctx context.Context, userID string) ([]domain.Expense, error)
	// Delete removes the expense only when both id and owner match,
	// returning ErrExpenseNotFound otherwise.
	Delete(ctx context.Context, userID, id string) error
	// ListAll returns every expense in the store; used for snapshots.
	ListAll(ctx context.Context) ([]domain.Expense, error)
}

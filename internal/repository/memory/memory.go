// Package memory provides map-backed repositories. They serve tests and
// store-less runs; the sqlite backend is the default for real use.
package memory

import (
	"context"
	"sort"
	"sync"

	"expense-ledger/internal/domain"
	"expense-ledger/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Init(ctx context.Context) error { return nil }

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrUserExists
		}
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, len(r.users))
	copy(users, r.users)
	return users, nil
}

type ExpenseRepository struct {
	mu       sync.RWMutex
	expenses []domain.Expense
}

func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{}
}

func (r *ExpenseRepository) Init(ctx context.Context) error { return nil }

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Expense
	for _, expense := range r.expenses {
		if expense.UserID == userID {
			result = append(result, expense)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, expense := range r.expenses {
		if expense.ID == id && expense.UserID == userID {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return repository.ErrExpenseNotFound
}

func (r *ExpenseRepository) ListAll(ctx context.Context) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expenses := make([]domain.Expense, len(r.expenses))
	copy(expenses, r.expenses)
	return expenses, nil
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ExpenseRepository = (*ExpenseRepository)(nil)
)

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"expense-ledger/internal/categorizer"
	"expense-ledger/internal/domain"
	"expense-ledger/internal/repository"
)

// ErrExpenseNotFound is returned when a delete target is absent or owned by
// another user. Both cases look identical to the caller.
var ErrExpenseNotFound = errors.New("expense not found")

// ExpenseService coordinates expense operations for an authenticated user.
type ExpenseService interface {
	Create(ctx context.Context, userID string, amount float64, description string, date *time.Time) (*domain.Expense, error)
	List(ctx context.Context, userID string) ([]domain.Expense, error)
	Delete(ctx context.Context, userID, id string) error
}

type expenseService struct {
	expenses repository.ExpenseRepository

	// userLocks serializes writes per user so concurrent requests from one
	// session cannot lose updates. Cross-user requests never contend.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewExpenseService(expenses repository.ExpenseRepository) ExpenseService {
	return &expenseService{
		expenses:  expenses,
		userLocks: make(map[string]*sync.Mutex),
	}
}

func (s *expenseService) lockUser(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

func (s *expenseService) Create(ctx context.Context, userID string, amount float64, description string, date *time.Time) (*domain.Expense, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount is required", ErrValidation)
	}

	when := time.Now().UTC()
	if date != nil && !date.IsZero() {
		when = *date
	}

	expense := &domain.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Date:        when,
		Category:    categorizer.Categorize(description, amount),
		CreatedAt:   time.Now().UTC(),
	}

	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) List(ctx context.Context, userID string) ([]domain.Expense, error) {
	return s.expenses.ListByUser(ctx, userID)
}

func (s *expenseService) Delete(ctx context.Context, userID, id string) error {
	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.expenses.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	return nil
}

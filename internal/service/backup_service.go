package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"expense-ledger/internal/repository"
	"expense-ledger/internal/storage"
)

// BackupService snapshots the two ledger collections (users, expenses) to
// object storage. Failures are logged and retried on the next tick, never
// fatal to the serving path.
type BackupService interface {
	Snapshot(ctx context.Context) (string, error)
	List(ctx context.Context) ([]storage.ObjectInfo, error)
	Run(ctx context.Context, interval time.Duration)
}

type backupService struct {
	users    repository.UserRepository
	expenses repository.ExpenseRepository
	storage  storage.Service
	opts     storage.UploadOptions
	logger   *logrus.Logger
}

func NewBackupService(
	users repository.UserRepository,
	expenses repository.ExpenseRepository,
	store storage.Service,
	opts storage.UploadOptions,
	logger *logrus.Logger,
) BackupService {
	return &backupService{
		users:    users,
		expenses: expenses,
		storage:  store,
		opts:     opts,
		logger:   logger,
	}
}

type snapshotUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type snapshotExpense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

type snapshot struct {
	TakenAt  time.Time         `json:"takenAt"`
	Users    []snapshotUser    `json:"users"`
	Expenses []snapshotExpense `json:"expenses"`
}

// Snapshot serializes the full store and uploads one timestamped object,
// returning its location.
func (s *backupService) Snapshot(ctx context.Context) (string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot users: %w", err)
	}
	expenses, err := s.expenses.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot expenses: %w", err)
	}

	snap := snapshot{
		TakenAt:  time.Now().UTC(),
		Users:    make([]snapshotUser, 0, len(users)),
		Expenses: make([]snapshotExpense, 0, len(expenses)),
	}
	for _, user := range users {
		snap.Users = append(snap.Users, snapshotUser(user))
	}
	for _, expense := range expenses {
		snap.Expenses = append(snap.Expenses, snapshotExpense(expense))
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("ledger-%s.json", snap.TakenAt.Format("20060102T150405Z"))
	location, err := s.storage.UploadSnapshot(ctx, s.opts, name, data)
	if err != nil {
		return "", err
	}
	return location, nil
}

// List returns the snapshot objects currently stored under the configured
// prefix, newest and oldest alike.
func (s *backupService) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	return s.storage.ListObjects(ctx, s.opts.Bucket, strings.Trim(s.opts.KeyPrefix, "/"))
}

// Run takes a snapshot every interval until the context is canceled.
func (s *backupService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			location, err := s.Snapshot(ctx)
			if err != nil {
				s.logger.Warnf("ledger snapshot: %v", err)
				continue
			}
			s.logger.Infof("ledger snapshot uploaded to %s", location)
		}
	}
}

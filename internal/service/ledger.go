package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/repository"
)

// BalanceService is the single mutation path for user balances. Every change
// is an appended ledger entry; the balance itself is always the fold of the
// committed entries, so history and balance cannot diverge.
type BalanceService struct {
	repo LedgerRepository
	now  func() time.Time
}

func NewBalanceService(repo LedgerRepository) *BalanceService {
	return &BalanceService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *BalanceService) Credit(ctx context.Context, telegramID int64, amount int64, reason model.EntryType) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := s.repo.AppendCredit(ctx, telegramID, amount, reason, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to credit balance: %w", err)
	}
	return balance, nil
}

func (s *BalanceService) Debit(ctx context.Context, telegramID int64, amount int64, reason model.EntryType) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := s.repo.AppendDebit(ctx, telegramID, amount, reason, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return 0, ErrUserNotFound
		case errors.Is(err, repository.ErrInsufficientFunds):
			return 0, ErrInsufficientFunds
		}
		return 0, fmt.Errorf("failed to debit balance: %w", err)
	}
	return balance, nil
}

func (s *BalanceService) Balance(ctx context.Context, telegramID int64) (int64, error) {
	balance, err := s.repo.GetBalance(ctx, telegramID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (s *BalanceService) History(ctx context.Context, telegramID int64) ([]*model.LedgerEntry, error) {
	entries, err := s.repo.GetLedgerEntries(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger history: %w", err)
	}
	return entries, nil
}

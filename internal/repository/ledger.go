package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"BB_donate_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ledgerEntry struct {
	ID             uuid.UUID `db:"id"`
	UserTelegramID int64     `db:"user_telegram_id"`
	EntryType      string    `db:"entry_type"`
	Amount         int64     `db:"amount"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
}

// lockUser serializes balance mutations for a single user by taking a row
// lock for the remainder of the transaction.
func (r *Repository) lockUser(ctx context.Context, tx *sqlx.Tx, telegramID int64) error {
	query, args, err := squirrel.
		Select("telegram_id").
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	var id int64
	err = tx.GetContext(ctx, &id, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) appendEntryWithTx(ctx context.Context, tx *sqlx.Tx, entry *model.LedgerEntry) error {
	query, args, err := squirrel.
		Insert("ledger_entries").
		SetMap(map[string]interface{}{
			"id":               entry.ID,
			"user_telegram_id": entry.UserTelegramID,
			"entry_type":       entry.Type,
			"amount":           entry.Amount,
			"status":           entry.Status,
			"created_at":       entry.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ledger insert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// balanceWithTx folds the committed entries for a user. Failed entries are
// history only and never count toward the balance.
func (r *Repository) balanceWithTx(ctx context.Context, tx *sqlx.Tx, telegramID int64) (int64, error) {
	query, args, err := squirrel.
		Select("COALESCE(SUM(amount), 0)").
		From("ledger_entries").
		Where(squirrel.Eq{
			"user_telegram_id": telegramID,
			"status":           model.EntryStatusSuccess,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var balance int64
	err = tx.GetContext(ctx, &balance, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger entries: %w", err)
	}
	return balance, nil
}

func (r *Repository) AppendCredit(ctx context.Context, telegramID int64, amount int64, entryType model.EntryType, now time.Time) (int64, error) {
	var balance int64
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := r.lockUser(ctx, tx, telegramID); err != nil {
			return err
		}

		err := r.appendEntryWithTx(ctx, tx, &model.LedgerEntry{
			ID:             uuid.New(),
			UserTelegramID: telegramID,
			Type:           entryType,
			Amount:         amount,
			Status:         model.EntryStatusSuccess,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}

		balance, err = r.balanceWithTx(ctx, tx, telegramID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *Repository) AppendDebit(ctx context.Context, telegramID int64, amount int64, entryType model.EntryType, now time.Time) (int64, error) {
	var balance int64
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := r.lockUser(ctx, tx, telegramID); err != nil {
			return err
		}

		current, err := r.balanceWithTx(ctx, tx, telegramID)
		if err != nil {
			return err
		}
		if current < amount {
			return ErrInsufficientFunds
		}

		err = r.appendEntryWithTx(ctx, tx, &model.LedgerEntry{
			ID:             uuid.New(),
			UserTelegramID: telegramID,
			Type:           entryType,
			Amount:         -amount,
			Status:         model.EntryStatusSuccess,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}

		balance = current - amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *Repository) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	query, args, err := squirrel.
		Select("COALESCE(SUM(amount), 0)").
		From("ledger_entries").
		Where(squirrel.Eq{
			"user_telegram_id": telegramID,
			"status":           model.EntryStatusSuccess,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var balance int64
	err = r.db.GetContext(ctx, &balance, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (r *Repository) GetLedgerEntries(ctx context.Context, telegramID int64) ([]*model.LedgerEntry, error) {
	query, args, err := squirrel.
		Select("*").
		From("ledger_entries").
		Where(squirrel.Eq{"user_telegram_id": telegramID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var entries []ledgerEntry
	err = r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	out := make([]*model.LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = &model.LedgerEntry{
			ID:             e.ID,
			UserTelegramID: e.UserTelegramID,
			Type:           model.EntryType(e.EntryType),
			Amount:         e.Amount,
			Status:         model.EntryStatus(e.Status),
			CreatedAt:      e.CreatedAt,
		}
	}
	return out, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"BB_donate_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RecordDonation persists the donation and its ledger entry in one
// transaction. Only a success entry moves the balance; a failed attempt is
// kept as history with no balance effect.
func (r *Repository) RecordDonation(ctx context.Context, d *model.Donation) (int64, error) {
	var balance int64

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := r.lockUser(ctx, tx, d.UserTelegramID); err != nil {
			return err
		}

		query, args, err := squirrel.
			Insert("donations").
			SetMap(map[string]interface{}{
				"id":                d.ID,
				"user_telegram_id":  d.UserTelegramID,
				"amount":            d.Amount,
				"method":            d.Method,
				"promo_code":        d.PromoCode,
				"status":            d.Status,
				"payment_reference": d.PaymentReference,
				"created_at":        d.CreatedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build donation insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert donation: %w", err)
		}

		entryStatus := model.EntryStatusSuccess
		if d.Status == model.DonationStatusFailed {
			entryStatus = model.EntryStatusFailed
		}

		err = r.appendEntryWithTx(ctx, tx, &model.LedgerEntry{
			ID:             uuid.New(),
			UserTelegramID: d.UserTelegramID,
			Type:           model.EntryDonation,
			Amount:         d.Amount,
			Status:         entryStatus,
			CreatedAt:      d.CreatedAt,
		})
		if err != nil {
			return err
		}

		balance, err = r.balanceWithTx(ctx, tx, d.UserTelegramID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *Repository) GetDonationsByUser(ctx context.Context, telegramID int64) ([]*model.Donation, error) {
	query, args, err := squirrel.
		Select("*").
		From("donations").
		Where(squirrel.Eq{"user_telegram_id": telegramID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var donations []donation
	err = r.db.SelectContext(ctx, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get donations: %w", err)
	}

	out := make([]*model.Donation, len(donations))
	for i, d := range donations {
		out[i] = d.toModel()
	}
	return out, nil
}

type donation struct {
	ID               uuid.UUID `db:"id"`
	UserTelegramID   int64     `db:"user_telegram_id"`
	Amount           int64     `db:"amount"`
	Method           string    `db:"method"`
	PromoCode        string    `db:"promo_code"`
	Status           string    `db:"status"`
	PaymentReference string    `db:"payment_reference"`
	CreatedAt        time.Time `db:"created_at"`
}

func (d *donation) toModel() *model.Donation {
	return &model.Donation{
		ID:               d.ID,
		UserTelegramID:   d.UserTelegramID,
		Amount:           d.Amount,
		Method:           model.PaymentMethod(d.Method),
		PromoCode:        d.PromoCode,
		Status:           model.DonationStatus(d.Status),
		PaymentReference: d.PaymentReference,
		CreatedAt:        d.CreatedAt,
	}
}

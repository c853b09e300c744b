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
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

type promoCode struct {
	Code      string    `db:"code"`
	Reward    int64     `db:"reward"`
	ExpiresAt time.Time `db:"expires_at"`
	UsedCount int       `db:"used_count"`
	MaxUses   int       `db:"max_uses"`
	CreatedAt time.Time `db:"created_at"`
}

func (p *promoCode) toModel() *model.PromoCode {
	return &model.PromoCode{
		Code:      p.Code,
		Reward:    p.Reward,
		ExpiresAt: p.ExpiresAt,
		UsedCount: p.UsedCount,
		MaxUses:   p.MaxUses,
		CreatedAt: p.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *Repository) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	query, args, err := squirrel.
		Select("*").
		From("promo_codes").
		Where(squirrel.Eq{"code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var promo promoCode
	err = r.db.GetContext(ctx, &promo, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return promo.toModel(), nil
}

// RedeemPromoCode consumes one use of a code for a user. The code row is
// locked for the whole transaction so the cap check and the increment cannot
// interleave between concurrent redemptions. The redemption record, the
// usage increment and the ledger credit commit together or not at all.
func (r *Repository) RedeemPromoCode(ctx context.Context, telegramID int64, code string, now time.Time) (int64, int64, error) {
	var reward, balance int64

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Select("*").
			From("promo_codes").
			Where(squirrel.Eq{"code": code}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var promo promoCode
		err = tx.GetContext(ctx, &promo, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if promo.UsedCount >= promo.MaxUses {
			return ErrUsageLimitReached
		}

		insertQuery, insertArgs, err := squirrel.
			Insert("promo_redemptions").
			SetMap(map[string]interface{}{
				"user_telegram_id": telegramID,
				"code":             code,
				"redeemed_at":      now,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build redemption insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyRedeemed
			}
			return fmt.Errorf("failed to insert redemption: %w", err)
		}

		updateQuery, updateArgs, err := squirrel.
			Update("promo_codes").
			Set("used_count", squirrel.Expr("used_count + 1")).
			Where(squirrel.Eq{"code": code}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to increment used count: %w", err)
		}

		if err := r.lockUser(ctx, tx, telegramID); err != nil {
			return err
		}

		err = r.appendEntryWithTx(ctx, tx, &model.LedgerEntry{
			ID:             uuid.New(),
			UserTelegramID: telegramID,
			Type:           model.EntryPromo,
			Amount:         promo.Reward,
			Status:         model.EntryStatusSuccess,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}

		reward = promo.Reward
		balance, err = r.balanceWithTx(ctx, tx, telegramID)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return reward, balance, nil
}

func (r *Repository) CreatePromoCode(ctx context.Context, promo *model.PromoCode) error {
	query, args, err := squirrel.
		Insert("promo_codes").
		SetMap(map[string]interface{}{
			"code":       promo.Code,
			"reward":     promo.Reward,
			"expires_at": promo.ExpiresAt,
			"max_uses":   promo.MaxUses,
			"created_at": promo.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build promo insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPromoAlreadyExists
		}
		return fmt.Errorf("failed to insert promo code: %w", err)
	}
	return nil
}

func (r *Repository) GetActivePromoCodes(ctx context.Context, now time.Time) ([]*model.PromoCode, error) {
	query, args, err := squirrel.
		Select("*").
		From("promo_codes").
		Where(squirrel.Gt{"expires_at": now}).
		Where(squirrel.Expr("used_count < max_uses")).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var promos []promoCode
	err = r.db.SelectContext(ctx, &promos, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get active promo codes: %w", err)
	}

	out := make([]*model.PromoCode, len(promos))
	for i := range promos {
		out[i] = promos[i].toModel()
	}
	return out, nil
}

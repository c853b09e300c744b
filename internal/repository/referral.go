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

type referral struct {
	ReferredID int64     `db:"referred_id"`
	ReferrerID int64     `db:"referrer_id"`
	CreatedAt  time.Time `db:"created_at"`
	Earned     int64     `db:"earned"`
}

func (r *Repository) CreateReferral(ctx context.Context, ref *model.Referral) error {
	query, args, err := squirrel.
		Insert("referrals").
		SetMap(map[string]interface{}{
			"referred_id": ref.ReferredID,
			"referrer_id": ref.ReferrerID,
			"created_at":  ref.CreatedAt,
			"earned":      ref.Earned,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build referral insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyAttributed
		}
		return fmt.Errorf("failed to insert referral: %w", err)
	}
	return nil
}

func (r *Repository) GetReferralByReferred(ctx context.Context, referredID int64) (*model.Referral, error) {
	query, args, err := squirrel.
		Select("*").
		From("referrals").
		Where(squirrel.Eq{"referred_id": referredID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ref referral
	err = r.db.GetContext(ctx, &ref, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.Referral{
		ReferredID: ref.ReferredID,
		ReferrerID: ref.ReferrerID,
		CreatedAt:  ref.CreatedAt,
		Earned:     ref.Earned,
	}, nil
}

func (r *Repository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": referrerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

func (r *Repository) CountReferralsSince(ctx context.Context, referrerID int64, since time.Time) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": referrerID}).
		Where(squirrel.GtOrEq{"created_at": since}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals since %s: %w", since, err)
	}
	return count, nil
}

func (r *Repository) GetReferralEarnings(ctx context.Context, referrerID int64) (int64, error) {
	query, args, err := squirrel.
		Select("COALESCE(SUM(earned), 0)").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": referrerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var earned int64
	err = r.db.GetContext(ctx, &earned, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to sum referral earnings: %w", err)
	}
	return earned, nil
}

// AddReferralEarnings credits a referral bonus to the referrer of the given
// user. The earnings counter and the referrer's ledger entry commit together.
// Returns the referrer id, or ErrNotFound when the user has no referrer.
func (r *Repository) AddReferralEarnings(ctx context.Context, referredID int64, bonus int64, now time.Time) (int64, error) {
	var referrerID int64

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Select("referrer_id").
			From("referrals").
			Where(squirrel.Eq{"referred_id": referredID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &referrerID, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		updateQuery, updateArgs, err := squirrel.
			Update("referrals").
			Set("earned", squirrel.Expr("earned + ?", bonus)).
			Where(squirrel.Eq{"referred_id": referredID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to update referral earnings: %w", err)
		}

		if err := r.lockUser(ctx, tx, referrerID); err != nil {
			return err
		}

		return r.appendEntryWithTx(ctx, tx, &model.LedgerEntry{
			ID:             uuid.New(),
			UserTelegramID: referrerID,
			Type:           model.EntryReferralBonus,
			Amount:         bonus,
			Status:         model.EntryStatusSuccess,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return 0, err
	}
	return referrerID, nil
}

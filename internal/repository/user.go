package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"BB_donate_backend/internal/model"

	"github.com/Masterminds/squirrel"
)

type user struct {
	TelegramID       int64     `db:"telegram_id"`
	Username         string    `db:"username"`
	Email            string    `db:"email"`
	Role             string    `db:"role"`
	ReferralCode     string    `db:"referral_code"`
	RegistrationDate time.Time `db:"registration_date"`
	AuthDate         time.Time `db:"last_auth_date"`
	Balance          int64     `db:"balance"`
}

const balanceColumn = `(SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
	WHERE user_telegram_id = users.telegram_id AND status = 'success') AS balance`

func (u *user) toModel() *model.User {
	return &model.User{
		TelegramID:       u.TelegramID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             model.Role(u.Role),
		ReferralCode:     u.ReferralCode,
		RegistrationDate: u.RegistrationDate,
		AuthDate:         u.AuthDate,
		Balance:          u.Balance,
	}
}

func (r *Repository) CreateUser(ctx context.Context, u *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"telegram_id":       u.TelegramID,
			"username":          u.Username,
			"email":             u.Email,
			"role":              u.Role,
			"referral_code":     u.ReferralCode,
			"registration_date": u.RegistrationDate,
			"last_auth_date":    u.AuthDate,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query, args, err := squirrel.
		Select("telegram_id", "username", "email", "role", "referral_code",
			"registration_date", "last_auth_date", balanceColumn).
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u user
	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u.toModel(), nil
}

func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	query, args, err := squirrel.
		Select("telegram_id", "username", "email", "role", "referral_code",
			"registration_date", "last_auth_date", balanceColumn).
		From("users").
		Where(squirrel.Eq{"referral_code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u user
	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u.toModel(), nil
}

func (r *Repository) UpdateAuthDate(ctx context.Context, telegramID int64, authDate time.Time) error {
	query, args, err := squirrel.
		Update("users").
		Set("last_auth_date", authDate).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update auth date: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type topDonator struct {
	TelegramID int64  `db:"telegram_id"`
	Username   string `db:"username"`
	Donated    int64  `db:"donated"`
}

func (r *Repository) GetTopDonators(ctx context.Context, limit int) ([]*model.TopDonator, error) {
	query, args, err := squirrel.
		Select("users.telegram_id", "users.username", "COALESCE(SUM(ledger_entries.amount), 0) AS donated").
		From("users").
		Join("ledger_entries ON ledger_entries.user_telegram_id = users.telegram_id").
		Where(squirrel.Eq{
			"ledger_entries.entry_type": model.EntryDonation,
			"ledger_entries.status":     model.EntryStatusSuccess,
		}).
		GroupBy("users.telegram_id", "users.username").
		OrderBy("donated DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var donators []topDonator
	err = r.db.SelectContext(ctx, &donators, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top donators: %w", err)
	}

	out := make([]*model.TopDonator, len(donators))
	for i, d := range donators {
		out[i] = &model.TopDonator{
			TelegramID: d.TelegramID,
			Username:   d.Username,
			Donated:    d.Donated,
		}
	}
	return out, nil
}

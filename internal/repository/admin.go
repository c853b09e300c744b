package repository

import (
	"context"
	"fmt"
	"time"

	"BB_donate_backend/internal/model"

	"github.com/Masterminds/squirrel"
)

type DashboardStats struct {
	Users        int   `db:"users"`
	Donations    int   `db:"donations"`
	TotalDonated int64 `db:"total_donated"`
	ActivePromos int   `db:"active_promos"`
}

func (r *Repository) GetDashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	var stats DashboardStats

	query, args, err := squirrel.
		Select("COUNT(*)").
		From("users").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.Users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query, args, err = squirrel.
		Select("COUNT(*)", "COALESCE(SUM(amount), 0)").
		From("donations").
		Where(squirrel.Eq{"status": model.DonationStatusSuccess}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&stats.Donations, &stats.TotalDonated); err != nil {
		return nil, fmt.Errorf("failed to sum donations: %w", err)
	}

	query, args, err = squirrel.
		Select("COUNT(*)").
		From("promo_codes").
		Where(squirrel.Gt{"expires_at": now}).
		Where(squirrel.Expr("used_count < max_uses")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.ActivePromos, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count active promo codes: %w", err)
	}

	return &stats, nil
}

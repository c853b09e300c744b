package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/notify"
	"BB_donate_backend/internal/repository"
)

type PromoCodeService struct {
	repo   PromoCodeRepository
	events Notifier
	now    func() time.Time
}

func NewPromoCodeService(repo PromoCodeRepository, events Notifier) *PromoCodeService {
	return &PromoCodeService{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

type RedeemResult struct {
	Code    string
	Reward  int64
	Balance int64
}

// Redeem consumes one use of a promo code for a user and credits the reward.
// The expiry check runs against the service clock; cap and uniqueness are
// re-checked inside the repository transaction, so a concurrent burst of
// requests can never push used_count past max_uses.
func (s *PromoCodeService) Redeem(ctx context.Context, telegramID int64, code string) (*RedeemResult, error) {
	promo, err := s.repo.GetPromoCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPromoCodeNotFound
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}

	now := s.now().UTC()
	if now.After(promo.ExpiresAt) {
		return nil, ErrPromoCodeExpired
	}
	if promo.UsedCount >= promo.MaxUses {
		return nil, ErrPromoCodeLimitReached
	}

	reward, balance, err := s.repo.RedeemPromoCode(ctx, telegramID, code, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPromoCodeNotFound
		case errors.Is(err, repository.ErrUsageLimitReached):
			return nil, ErrPromoCodeLimitReached
		case errors.Is(err, repository.ErrAlreadyRedeemed):
			return nil, ErrPromoCodeAlreadyUsed
		}
		return nil, fmt.Errorf("failed to redeem promo code: %w", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, notify.Event{
			Type:      "promo",
			UserID:    telegramID,
			Amount:    reward,
			Timestamp: now,
		})
	}

	return &RedeemResult{
		Code:    code,
		Reward:  reward,
		Balance: balance,
	}, nil
}

func (s *PromoCodeService) Create(ctx context.Context, promo *model.PromoCode) error {
	if promo.Reward <= 0 || promo.MaxUses <= 0 {
		return ErrInvalidAmount
	}
	if promo.CreatedAt.IsZero() {
		promo.CreatedAt = s.now().UTC()
	}

	err := s.repo.CreatePromoCode(ctx, promo)
	if err != nil {
		if errors.Is(err, repository.ErrPromoAlreadyExists) {
			return ErrPromoCodeExists
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

func (s *PromoCodeService) ListActive(ctx context.Context) ([]*model.PromoCode, error) {
	promos, err := s.repo.GetActivePromoCodes(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list active promo codes: %w", err)
	}
	return promos, nil
}

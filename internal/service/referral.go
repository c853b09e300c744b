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

// Referrers earn a cut of every successful donation made by the users they
// brought in.
const ReferralBonusPercent = 10

var (
	dayWindow   = 24 * time.Hour
	weekWindow  = 7 * 24 * time.Hour
	monthWindow = 30 * 24 * time.Hour
)

type ReferralService struct {
	repo   ReferralRepository
	events Notifier
	now    func() time.Time
}

func NewReferralService(repo ReferralRepository, events Notifier) *ReferralService {
	return &ReferralService{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

// Attribute links a newly arrived user to the owner of refCode. A nil result
// with no error means nothing happened: the code is unknown, belongs to the
// user themselves, or the user was attributed earlier.
func (s *ReferralService) Attribute(ctx context.Context, referredID int64, refCode string) (*model.Referral, error) {
	referrer, err := s.repo.GetUserByReferralCode(ctx, refCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve referral code: %w", err)
	}

	if referrer.TelegramID == referredID {
		return nil, nil
	}

	ref := &model.Referral{
		ReferredID: referredID,
		ReferrerID: referrer.TelegramID,
		CreatedAt:  s.now().UTC(),
	}

	err = s.repo.CreateReferral(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyAttributed) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}

	return ref, nil
}

func (s *ReferralService) StatsFor(ctx context.Context, telegramID int64) (*model.ReferralStats, error) {
	now := s.now().UTC()

	today, err := s.repo.CountReferralsSince(ctx, telegramID, now.Add(-dayWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count today referrals: %w", err)
	}

	week, err := s.repo.CountReferralsSince(ctx, telegramID, now.Add(-weekWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count week referrals: %w", err)
	}

	month, err := s.repo.CountReferralsSince(ctx, telegramID, now.Add(-monthWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count month referrals: %w", err)
	}

	total, err := s.repo.CountReferrals(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	earned, err := s.repo.GetReferralEarnings(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral earnings: %w", err)
	}

	return &model.ReferralStats{
		Today:  today,
		Week:   week,
		Month:  month,
		Total:  total,
		Earned: earned,
	}, nil
}

// CreditDonationBonus accrues the referrer's cut of a successful donation.
// Returns 0 with no error when the donator has no referrer.
func (s *ReferralService) CreditDonationBonus(ctx context.Context, referredID int64, donationAmount int64) (int64, error) {
	bonus := (donationAmount*ReferralBonusPercent + 99) / 100
	if bonus <= 0 {
		return 0, nil
	}

	now := s.now().UTC()
	referrerID, err := s.repo.AddReferralEarnings(ctx, referredID, bonus, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to credit referral bonus: %w", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, notify.Event{
			Type:      "referral_bonus",
			UserID:    referrerID,
			Amount:    bonus,
			Timestamp: now,
		})
	}

	return bonus, nil
}

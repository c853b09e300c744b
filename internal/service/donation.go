package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/notify"
	"BB_donate_backend/internal/payment"
	"BB_donate_backend/internal/repository"
	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/google/uuid"
)

// MinDonationAmount is the smallest accepted donation, in rubles.
const MinDonationAmount = 10

// PromoRedeemer applies an optional promo code before a donation finalizes.
type PromoRedeemer interface {
	Redeem(ctx context.Context, telegramID int64, code string) (*RedeemResult, error)
}

// BonusAccruer credits the referrer's share of a successful donation.
type BonusAccruer interface {
	CreditDonationBonus(ctx context.Context, referredID int64, donationAmount int64) (int64, error)
}

type DonationService struct {
	repo           DonationRepository
	promos         PromoRedeemer
	referrals      BonusAccruer
	payments       PaymentCollector
	receipts       ReceiptSender
	events         Notifier
	paymentTimeout time.Duration
	now            func() time.Time
}

func NewDonationService(repo DonationRepository, promos PromoRedeemer, referrals BonusAccruer,
	payments PaymentCollector, receipts ReceiptSender, events Notifier,
	paymentTimeout time.Duration) *DonationService {
	return &DonationService{
		repo:           repo,
		promos:         promos,
		referrals:      referrals,
		payments:       payments,
		receipts:       receipts,
		events:         events,
		paymentTimeout: paymentTimeout,
		now:            time.Now,
	}
}

// Create validates and processes a donation. The gateway call is bounded by
// the configured timeout; a donation that misses its confirmation is recorded
// as failed and never credited. Retrying is left to the caller so a late
// confirmation cannot double-credit.
func (s *DonationService) Create(ctx context.Context, telegramID int64, amount int64,
	method model.PaymentMethod, promoCode string) (*model.Donation, error) {
	if amount < MinDonationAmount {
		return nil, ErrBelowMinimum
	}

	switch method {
	case model.MethodTelegram, model.MethodCard, model.MethodYoomoney:
	default:
		return nil, ErrUnknownPaymentMethod
	}

	if promoCode != "" {
		if _, err := s.promos.Redeem(ctx, telegramID, promoCode); err != nil {
			return nil, err
		}
	}

	payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	conf, err := s.payments.Collect(payCtx, payment.Request{
		UserID: telegramID,
		Amount: amount,
		Method: string(method),
	})

	d := &model.Donation{
		ID:             uuid.New(),
		UserTelegramID: telegramID,
		Amount:         amount,
		Method:         method,
		PromoCode:      promoCode,
		CreatedAt:      s.now().UTC(),
	}

	if err != nil {
		d.Status = model.DonationStatusFailed
		s.recordFailed(ctx, d)
		if errors.Is(err, context.DeadlineExceeded) {
			return d, ErrPaymentTimeout
		}
		return d, ErrPaymentRejected
	}

	d.PaymentReference = conf.Reference
	if !conf.Confirmed {
		d.Status = model.DonationStatusFailed
		s.recordFailed(ctx, d)
		return d, ErrPaymentRejected
	}

	d.Status = model.DonationStatusSuccess
	if _, err := s.repo.RecordDonation(ctx, d); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to record donation: %w", err)
	}

	if _, err := s.referrals.CreditDonationBonus(ctx, telegramID, amount); err != nil {
		logger.Logger().Error("failed to credit referral bonus",
			zap.Int64("telegram_id", telegramID), zap.Error(err))
	}

	if s.events != nil {
		s.events.Publish(ctx, notify.Event{
			Type:      "donation",
			UserID:    telegramID,
			Amount:    amount,
			Timestamp: d.CreatedAt,
		})
	}

	if s.receipts != nil {
		if err := s.receipts.SendReceipt(telegramID, amount); err != nil {
			logger.Logger().Info("failed to send payment receipt",
				zap.Int64("telegram_id", telegramID), zap.Error(err))
		}
	}

	return d, nil
}

func (s *DonationService) recordFailed(ctx context.Context, d *model.Donation) {
	if _, err := s.repo.RecordDonation(ctx, d); err != nil {
		logger.Logger().Error("failed to record failed donation",
			zap.Int64("telegram_id", d.UserTelegramID), zap.Error(err))
	}
}

func (s *DonationService) History(ctx context.Context, telegramID int64) ([]*model.Donation, error) {
	donations, err := s.repo.GetDonationsByUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation history: %w", err)
	}
	return donations, nil
}

// PaymentLink returns the bot deep link for the telegram method, or "" when
// no bot is configured.
func (s *DonationService) PaymentLink(telegramID int64, amount int64) string {
	if s.receipts == nil {
		return ""
	}
	return s.receipts.PaymentLink(telegramID, amount)
}

package service

import (
	"context"
	"errors"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/notify"
	"BB_donate_backend/internal/payment"
	"BB_donate_backend/internal/repository"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user already registered")
	ErrPromoCodeNotFound     = errors.New("promo code not found")
	ErrPromoCodeExpired      = errors.New("promo code expired")
	ErrPromoCodeLimitReached = errors.New("promo code usage limit reached")
	ErrPromoCodeAlreadyUsed  = errors.New("promo code already activated")
	ErrPromoCodeExists       = errors.New("promo code already exists")
	ErrInvalidAmount         = errors.New("amount must be a positive integer")
	ErrBelowMinimum          = errors.New("donation amount below minimum")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
	ErrPaymentTimeout        = errors.New("payment confirmation timed out")
	ErrPaymentRejected       = errors.New("payment rejected by gateway")
)

type Service struct {
	*UserService
	*PromoCodeService
	*BalanceService
	*ReferralService
	*DonationService
}

func NewService(users *UserService, promos *PromoCodeService, balances *BalanceService,
	referrals *ReferralService, donations *DonationService) *Service {
	return &Service{
		UserService:      users,
		PromoCodeService: promos,
		BalanceService:   balances,
		ReferralService:  referrals,
		DonationService:  donations,
	}
}

type UserServiceI interface {
	Register(ctx context.Context, telegramID int64, username, email string) (*model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetTopDonators(ctx context.Context) ([]*model.TopDonator, error)
	GetDashboard(ctx context.Context) (*repository.DashboardStats, error)
}

type PromoCodeServiceI interface {
	Redeem(ctx context.Context, telegramID int64, code string) (*RedeemResult, error)
	Create(ctx context.Context, promo *model.PromoCode) error
	ListActive(ctx context.Context) ([]*model.PromoCode, error)
}

type BalanceServiceI interface {
	Credit(ctx context.Context, telegramID int64, amount int64, reason model.EntryType) (int64, error)
	Debit(ctx context.Context, telegramID int64, amount int64, reason model.EntryType) (int64, error)
	Balance(ctx context.Context, telegramID int64) (int64, error)
	History(ctx context.Context, telegramID int64) ([]*model.LedgerEntry, error)
}

type ReferralServiceI interface {
	Attribute(ctx context.Context, referredID int64, refCode string) (*model.Referral, error)
	StatsFor(ctx context.Context, telegramID int64) (*model.ReferralStats, error)
}

type DonationServiceI interface {
	Create(ctx context.Context, telegramID int64, amount int64, method model.PaymentMethod, promoCode string) (*model.Donation, error)
	History(ctx context.Context, telegramID int64) ([]*model.Donation, error)
	PaymentLink(telegramID int64, amount int64) string
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateAuthDate(ctx context.Context, telegramID int64, authDate time.Time) error
	GetTopDonators(ctx context.Context, limit int) ([]*model.TopDonator, error)
	GetDashboardStats(ctx context.Context, now time.Time) (*repository.DashboardStats, error)
}

type PromoCodeRepository interface {
	GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error)
	RedeemPromoCode(ctx context.Context, telegramID int64, code string, now time.Time) (int64, int64, error)
	CreatePromoCode(ctx context.Context, promo *model.PromoCode) error
	GetActivePromoCodes(ctx context.Context, now time.Time) ([]*model.PromoCode, error)
}

type LedgerRepository interface {
	AppendCredit(ctx context.Context, telegramID int64, amount int64, entryType model.EntryType, now time.Time) (int64, error)
	AppendDebit(ctx context.Context, telegramID int64, amount int64, entryType model.EntryType, now time.Time) (int64, error)
	GetBalance(ctx context.Context, telegramID int64) (int64, error)
	GetLedgerEntries(ctx context.Context, telegramID int64) ([]*model.LedgerEntry, error)
}

type ReferralRepository interface {
	CreateReferral(ctx context.Context, ref *model.Referral) error
	GetReferralByReferred(ctx context.Context, referredID int64) (*model.Referral, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	CountReferrals(ctx context.Context, referrerID int64) (int, error)
	CountReferralsSince(ctx context.Context, referrerID int64, since time.Time) (int, error)
	GetReferralEarnings(ctx context.Context, referrerID int64) (int64, error)
	AddReferralEarnings(ctx context.Context, referredID int64, bonus int64, now time.Time) (int64, error)
}

type DonationRepository interface {
	RecordDonation(ctx context.Context, d *model.Donation) (int64, error)
	GetDonationsByUser(ctx context.Context, telegramID int64) ([]*model.Donation, error)
}

// PaymentCollector is the external gateway collaborator.
type PaymentCollector interface {
	Collect(ctx context.Context, req payment.Request) (*payment.Confirmation, error)
}

// ReceiptSender delivers best-effort confirmations through the payment bot.
type ReceiptSender interface {
	SendReceipt(telegramID int64, amount int64) error
	PaymentLink(telegramID int64, amount int64) string
}

// Notifier pushes live events to connected clients. Best-effort only.
type Notifier interface {
	Publish(ctx context.Context, e notify.Event)
}

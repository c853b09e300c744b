package mocks

import (
	"context"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/payment"
	"BB_donate_backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockPromoCodeRepository struct {
	mock.Mock
}

func (m *MockPromoCodeRepository) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockPromoCodeRepository) RedeemPromoCode(ctx context.Context, telegramID int64, code string, now time.Time) (int64, int64, error) {
	args := m.Called(ctx, telegramID, code, now)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockPromoCodeRepository) CreatePromoCode(ctx context.Context, promo *model.PromoCode) error {
	args := m.Called(ctx, promo)
	return args.Error(0)
}

func (m *MockPromoCodeRepository) GetActivePromoCodes(ctx context.Context, now time.Time) ([]*model.PromoCode, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PromoCode), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) AppendCredit(ctx context.Context, telegramID int64, amount int64, entryType model.EntryType, now time.Time) (int64, error) {
	args := m.Called(ctx, telegramID, amount, entryType, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) AppendDebit(ctx context.Context, telegramID int64, amount int64, entryType model.EntryType, now time.Time) (int64, error) {
	args := m.Called(ctx, telegramID, amount, entryType, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	args := m.Called(ctx, telegramID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) GetLedgerEntries(ctx context.Context, telegramID int64) ([]*model.LedgerEntry, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LedgerEntry), args.Error(1)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) CreateReferral(ctx context.Context, ref *model.Referral) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferralRepository) GetReferralByReferred(ctx context.Context, referredID int64) (*model.Referral, error) {
	args := m.Called(ctx, referredID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Referral), args.Error(1)
}

func (m *MockReferralRepository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockReferralRepository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	args := m.Called(ctx, referrerID)
	return args.Int(0), args.Error(1)
}

func (m *MockReferralRepository) CountReferralsSince(ctx context.Context, referrerID int64, since time.Time) (int, error) {
	args := m.Called(ctx, referrerID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockReferralRepository) GetReferralEarnings(ctx context.Context, referrerID int64) (int64, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReferralRepository) AddReferralEarnings(ctx context.Context, referredID int64, bonus int64, now time.Time) (int64, error) {
	args := m.Called(ctx, referredID, bonus, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) RecordDonation(ctx context.Context, d *model.Donation) (int64, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDonationRepository) GetDonationsByUser(ctx context.Context, telegramID int64) ([]*model.Donation, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Donation), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateAuthDate(ctx context.Context, telegramID int64, authDate time.Time) error {
	args := m.Called(ctx, telegramID, authDate)
	return args.Error(0)
}

func (m *MockUserRepository) GetTopDonators(ctx context.Context, limit int) ([]*model.TopDonator, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TopDonator), args.Error(1)
}

func (m *MockUserRepository) GetDashboardStats(ctx context.Context, now time.Time) (*repository.DashboardStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DashboardStats), args.Error(1)
}

type MockPaymentCollector struct {
	mock.Mock
}

func (m *MockPaymentCollector) Collect(ctx context.Context, req payment.Request) (*payment.Confirmation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Confirmation), args.Error(1)
}

type MockReceiptSender struct {
	mock.Mock
}

func (m *MockReceiptSender) SendReceipt(telegramID int64, amount int64) error {
	args := m.Called(telegramID, amount)
	return args.Error(0)
}

func (m *MockReceiptSender) PaymentLink(telegramID int64, amount int64) string {
	args := m.Called(telegramID, amount)
	return args.String(0)
}

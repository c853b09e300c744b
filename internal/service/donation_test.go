package service

import (
	"context"
	"testing"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/payment"
	"BB_donate_backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPromoRedeemer struct {
	mock.Mock
}

func (m *mockPromoRedeemer) Redeem(ctx context.Context, telegramID int64, code string) (*RedeemResult, error) {
	args := m.Called(ctx, telegramID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RedeemResult), args.Error(1)
}

type mockBonusAccruer struct {
	mock.Mock
}

func (m *mockBonusAccruer) CreditDonationBonus(ctx context.Context, referredID int64, donationAmount int64) (int64, error) {
	args := m.Called(ctx, referredID, donationAmount)
	return args.Get(0).(int64), args.Error(1)
}

func newDonationServiceForTest(repo *mocks.MockDonationRepository, promos *mockPromoRedeemer,
	referrals *mockBonusAccruer, payments *mocks.MockPaymentCollector) *DonationService {
	s := NewDonationService(repo, promos, referrals, payments, nil, nil, 5*time.Second)
	s.now = func() time.Time {
		return time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	}
	return s
}

func TestDonationService_Create_Validation(t *testing.T) {
	repo := &mocks.MockDonationRepository{}
	promos := &mockPromoRedeemer{}
	referrals := &mockBonusAccruer{}
	payments := &mocks.MockPaymentCollector{}
	service := newDonationServiceForTest(repo, promos, referrals, payments)

	_, err := service.Create(context.Background(), 7, 5, model.MethodCard, "")
	assert.ErrorIs(t, err, ErrBelowMinimum)

	_, err = service.Create(context.Background(), 7, 100, model.PaymentMethod("cash"), "")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)

	payments.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "RecordDonation", mock.Anything, mock.Anything)
}

func TestDonationService_Create_Success(t *testing.T) {
	repo := &mocks.MockDonationRepository{}
	promos := &mockPromoRedeemer{}
	referrals := &mockBonusAccruer{}
	payments := &mocks.MockPaymentCollector{}
	service := newDonationServiceForTest(repo, promos, referrals, payments)

	payments.On("Collect", mock.Anything, payment.Request{
		UserID: 7,
		Amount: 500,
		Method: "card",
	}).Return(&payment.Confirmation{Confirmed: true, Reference: "pay-42"}, nil)

	repo.On("RecordDonation", mock.Anything, mock.MatchedBy(func(d *model.Donation) bool {
		return d.UserTelegramID == 7 &&
			d.Amount == 500 &&
			d.Method == model.MethodCard &&
			d.Status == model.DonationStatusSuccess &&
			d.PaymentReference == "pay-42"
	})).Return(int64(500), nil)

	referrals.On("CreditDonationBonus", mock.Anything, int64(7), int64(500)).
		Return(int64(50), nil)

	d, err := service.Create(context.Background(), 7, 500, model.MethodCard, "")

	assert.NoError(t, err)
	assert.NotNil(t, d)
	assert.Equal(t, model.DonationStatusSuccess, d.Status)
	assert.Equal(t, "pay-42", d.PaymentReference)

	promos.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
	payments.AssertExpectations(t)
	referrals.AssertExpectations(t)
}

func TestDonationService_Create_WithPromoCode(t *testing.T) {
	repo := &mocks.MockDonationRepository{}
	promos := &mockPromoRedeemer{}
	referrals := &mockBonusAccruer{}
	payments := &mocks.MockPaymentCollector{}
	service := newDonationServiceForTest(repo, promos, referrals, payments)

	promos.On("Redeem", mock.Anything, int64(7), "WELCOME").
		Return(&RedeemResult{Code: "WELCOME", Reward: 20, Balance: 20}, nil)

	payments.On("Collect", mock.Anything, mock.Anything).
		Return(&payment.Confirmation{Confirmed: true, Reference: "pay-43"}, nil)

	repo.On("RecordDonation", mock.Anything, mock.MatchedBy(func(d *model.Donation) bool {
		return d.PromoCode == "WELCOME" && d.Status == model.DonationStatusSuccess
	})).Return(int64(120), nil)

	referrals.On("CreditDonationBonus", mock.Anything, int64(7), int64(100)).
		Return(int64(0), nil)

	_, err := service.Create(context.Background(), 7, 100, model.MethodCard, "WELCOME")

	assert.NoError(t, err)
	promos.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestDonationService_Create_PromoErrorStopsPayment(t *testing.T) {
	repo := &mocks.MockDonationRepository{}
	promos := &mockPromoRedeemer{}
	referrals := &mockBonusAccruer{}
	payments := &mocks.MockPaymentCollector{}
	service := newDonationServiceForTest(repo, promos, referrals, payments)

	promos.On("Redeem", mock.Anything, int64(7), "NEWYEAR2026").
		Return(nil, ErrPromoCodeExpired)

	_, err := service.Create(context.Background(), 7, 100, model.MethodCard, "NEWYEAR2026")

	assert.ErrorIs(t, err, ErrPromoCodeExpired)
	payments.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "RecordDonation", mock.Anything, mock.Anything)
}

func TestDonationService_Create_Rejected(t *testing.T) {
	repo := &mocks.MockDonationRepository{}
	promos := &mockPromoRedeemer{}
	referrals := &mockBonusAccruer{}
	payments := &mocks.MockPaymentCollector{}
	service := newDonationServiceForTest(repo, promos, referrals, payments)

	payments.On("Collect", mock.Anything, mock.Anything).
		Return(&payment.Confirmation{Confirmed: false, Reference: "pay-44"}, nil)

	repo.On("RecordDonation", mock.Anything, mock.MatchedBy(func(d *model.Donation) bool {
		return d.Status == model.DonationStatusFailed && d.PaymentReference == "pay-44"
	})).Return(int64(0), nil)

	d, err := service.Create(context.Background(), 7, 100, model.MethodCard, "")

	assert.ErrorIs(t, err, ErrPaymentRejected)
	assert.Equal(t, model.DonationStatusFailed, d.Status)

	referrals.AssertNotCalled(t, "CreditDonationBonus", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestDonationService_Create_Timeout(t *testing.T) {
	repo := &mocks.MockDonationRepository{}
	promos := &mockPromoRedeemer{}
	referrals := &mockBonusAccruer{}
	payments := &mocks.MockPaymentCollector{}
	service := newDonationServiceForTest(repo, promos, referrals, payments)

	payments.On("Collect", mock.Anything, mock.Anything).
		Return(nil, context.DeadlineExceeded)

	repo.On("RecordDonation", mock.Anything, mock.MatchedBy(func(d *model.Donation) bool {
		return d.Status == model.DonationStatusFailed && d.PaymentReference == ""
	})).Return(int64(0), nil)

	d, err := service.Create(context.Background(), 7, 100, model.MethodTelegram, "")

	assert.ErrorIs(t, err, ErrPaymentTimeout)
	assert.Equal(t, model.DonationStatusFailed, d.Status)

	referrals.AssertNotCalled(t, "CreditDonationBonus", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

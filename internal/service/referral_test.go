package service

import (
	"context"
	"testing"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/repository"
	"BB_donate_backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReferralService_Attribute(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	referrer := &model.User{
		TelegramID:   100,
		Username:     "referrer",
		ReferralCode: "MTAw",
	}

	tests := []struct {
		name          string
		referredID    int64
		refCode       string
		mockSetup     func(mockRepo *mocks.MockReferralRepository)
		expectedRef   *model.Referral
		insertSkipped bool
	}{
		{
			name:       "Unknown code is a no-op",
			referredID: 200,
			refCode:    "UNKNOWN",
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByReferralCode", mock.Anything, "UNKNOWN").
					Return(nil, repository.ErrNotFound)
			},
			insertSkipped: true,
		},
		{
			name:       "Own code is a no-op",
			referredID: 100,
			refCode:    "MTAw",
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByReferralCode", mock.Anything, "MTAw").
					Return(referrer, nil)
			},
			insertSkipped: true,
		},
		{
			name:       "Already attributed is a no-op",
			referredID: 201,
			refCode:    "MTAw",
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByReferralCode", mock.Anything, "MTAw").
					Return(referrer, nil)
				mockRepo.On("CreateReferral", mock.Anything, mock.Anything).
					Return(repository.ErrAlreadyAttributed)
			},
		},
		{
			name:       "Successful attribution",
			referredID: 202,
			refCode:    "MTAw",
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByReferralCode", mock.Anything, "MTAw").
					Return(referrer, nil)
				mockRepo.On("CreateReferral", mock.Anything, mock.MatchedBy(func(ref *model.Referral) bool {
					return ref.ReferredID == 202 && ref.ReferrerID == 100 && ref.CreatedAt.Equal(now)
				})).Return(nil)
			},
			expectedRef: &model.Referral{
				ReferredID: 202,
				ReferrerID: 100,
				CreatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockReferralRepository{}
			tt.mockSetup(mockRepo)

			service := NewReferralService(mockRepo, nil)
			service.now = func() time.Time { return now }

			ref, err := service.Attribute(context.Background(), tt.referredID, tt.refCode)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedRef, ref)

			if tt.insertSkipped {
				mockRepo.AssertNotCalled(t, "CreateReferral", mock.Anything, mock.Anything)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_StatsFor(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	mockRepo := &mocks.MockReferralRepository{}
	mockRepo.On("CountReferralsSince", mock.Anything, int64(100), now.Add(-24*time.Hour)).
		Return(2, nil)
	mockRepo.On("CountReferralsSince", mock.Anything, int64(100), now.Add(-7*24*time.Hour)).
		Return(5, nil)
	mockRepo.On("CountReferralsSince", mock.Anything, int64(100), now.Add(-30*24*time.Hour)).
		Return(9, nil)
	mockRepo.On("CountReferrals", mock.Anything, int64(100)).
		Return(14, nil)
	mockRepo.On("GetReferralEarnings", mock.Anything, int64(100)).
		Return(int64(370), nil)

	service := NewReferralService(mockRepo, nil)
	service.now = func() time.Time { return now }

	stats, err := service.StatsFor(context.Background(), 100)

	assert.NoError(t, err)
	assert.Equal(t, &model.ReferralStats{
		Today:  2,
		Week:   5,
		Month:  9,
		Total:  14,
		Earned: 370,
	}, stats)

	mockRepo.AssertExpectations(t)
}

func TestReferralService_CreditDonationBonus(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		referredID     int64
		donationAmount int64
		mockSetup      func(mockRepo *mocks.MockReferralRepository)
		expectedBonus  int64
	}{
		{
			name:           "Ten percent of donation",
			referredID:     202,
			donationAmount: 100,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("AddReferralEarnings", mock.Anything, int64(202), int64(10), now).
					Return(int64(100), nil)
			},
			expectedBonus: 10,
		},
		{
			name:           "Bonus rounds up",
			referredID:     202,
			donationAmount: 15,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("AddReferralEarnings", mock.Anything, int64(202), int64(2), now).
					Return(int64(100), nil)
			},
			expectedBonus: 2,
		},
		{
			name:           "No referrer means no bonus",
			referredID:     300,
			donationAmount: 100,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("AddReferralEarnings", mock.Anything, int64(300), int64(10), now).
					Return(int64(0), repository.ErrNotFound)
			},
			expectedBonus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockReferralRepository{}
			tt.mockSetup(mockRepo)

			service := NewReferralService(mockRepo, nil)
			service.now = func() time.Time { return now }

			bonus, err := service.CreditDonationBonus(context.Background(), tt.referredID, tt.donationAmount)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBonus, bonus)

			mockRepo.AssertExpectations(t)
		})
	}
}

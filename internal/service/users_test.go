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

func TestReferralCodeFor(t *testing.T) {
	code := ReferralCodeFor(123456789)
	assert.Len(t, code, 8)

	// Stable: same id always derives the same code.
	assert.Equal(t, code, ReferralCodeFor(123456789))
	assert.NotEqual(t, code, ReferralCodeFor(987654321))
}

func TestUserService_Register(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	t.Run("New user", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.TelegramID == 7 &&
				u.Username == "donator" &&
				u.Role == model.RoleUser &&
				u.ReferralCode == ReferralCodeFor(7) &&
				u.RegistrationDate.Equal(now)
		})).Return(nil)

		service := NewUserService(mockRepo)
		service.now = func() time.Time { return now }

		u, err := service.Register(context.Background(), 7, "donator", "d@example.com")

		assert.NoError(t, err)
		assert.Equal(t, int64(7), u.TelegramID)
		assert.Equal(t, "d@example.com", u.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Existing user refreshes auth date", func(t *testing.T) {
		existing := &model.User{
			TelegramID:   7,
			Username:     "donator",
			ReferralCode: ReferralCodeFor(7),
			Balance:      120,
		}

		mockRepo := &mocks.MockUserRepository{}
		mockRepo.On("CreateUser", mock.Anything, mock.Anything).
			Return(repository.ErrUserAlreadyExists)
		mockRepo.On("UpdateAuthDate", mock.Anything, int64(7), now).
			Return(nil)
		mockRepo.On("GetUserByTelegramID", mock.Anything, int64(7)).
			Return(existing, nil)

		service := NewUserService(mockRepo)
		service.now = func() time.Time { return now }

		u, err := service.Register(context.Background(), 7, "donator", "")

		assert.NoError(t, err)
		assert.Equal(t, existing, u)
		mockRepo.AssertExpectations(t)
	})
}

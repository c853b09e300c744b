package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"BB_donate_backend/internal/model"
	"BB_donate_backend/internal/repository"
)

type UserService struct {
	repo UserRepository
	now  func() time.Time
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
		now:  time.Now,
	}
}

// ReferralCodeFor derives a stable share code from the telegram id.
func ReferralCodeFor(telegramID int64) string {
	code := base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(telegramID, 10)))
	if len(code) > 8 {
		code = code[:8]
	}
	return code
}

func (s *UserService) Register(ctx context.Context, telegramID int64, username, email string) (*model.User, error) {
	now := s.now().UTC()
	u := &model.User{
		TelegramID:       telegramID,
		Username:         username,
		Email:            email,
		Role:             model.RoleUser,
		ReferralCode:     ReferralCodeFor(telegramID),
		RegistrationDate: now,
		AuthDate:         now,
	}

	err := s.repo.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			if err := s.repo.UpdateAuthDate(ctx, telegramID, now); err != nil {
				return nil, fmt.Errorf("failed to update auth date: %w", err)
			}
			return s.GetUserByTelegramID(ctx, telegramID)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	u, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetTopDonators(ctx context.Context) ([]*model.TopDonator, error) {
	donators, err := s.repo.GetTopDonators(ctx, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to get top donators: %w", err)
	}
	return donators, nil
}

func (s *UserService) GetDashboard(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.repo.GetDashboardStats(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return stats, nil
}

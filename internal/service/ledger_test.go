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

func TestBalanceService_Credit(t *testing.T) {
	tests := []struct {
		name            string
		amount          int64
		mockSetup       func(mockRepo *mocks.MockLedgerRepository)
		expectedBalance int64
		expectedError   error
	}{
		{
			name:          "Zero amount",
			amount:        0,
			mockSetup:     func(mockRepo *mocks.MockLedgerRepository) {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:          "Negative amount",
			amount:        -50,
			mockSetup:     func(mockRepo *mocks.MockLedgerRepository) {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:   "Unknown user",
			amount: 100,
			mockSetup: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("AppendCredit", mock.Anything, int64(7), int64(100),
					model.EntryPromo, mock.Anything).
					Return(int64(0), repository.ErrNotFound)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:   "Successful credit",
			amount: 100,
			mockSetup: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("AppendCredit", mock.Anything, int64(7), int64(100),
					model.EntryPromo, mock.Anything).
					Return(int64(250), nil)
			},
			expectedBalance: 250,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockLedgerRepository{}
			tt.mockSetup(mockRepo)

			service := NewBalanceService(mockRepo)
			balance, err := service.Credit(context.Background(), 7, tt.amount, model.EntryPromo)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				mockRepo.AssertNotCalled(t, "AppendCredit",
					mock.Anything, mock.Anything, int64(0), mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestBalanceService_Debit(t *testing.T) {
	mockRepo := &mocks.MockLedgerRepository{}
	service := NewBalanceService(mockRepo)

	mockRepo.On("AppendDebit", mock.Anything, int64(7), int64(500),
		model.EntryDonation, mock.Anything).
		Return(int64(0), repository.ErrInsufficientFunds)

	_, err := service.Debit(context.Background(), 7, 500, model.EntryDonation)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = service.Debit(context.Background(), 7, -1, model.EntryDonation)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	mockRepo.AssertExpectations(t)
}

// fakeLedgerRepo appends to an in-memory journal so the fold invariant can be
// checked over a whole sequence of operations.
type fakeLedgerRepo struct {
	entries []*model.LedgerEntry
}

func (f *fakeLedgerRepo) sum() int64 {
	var total int64
	for _, e := range f.entries {
		if e.Status == model.EntryStatusSuccess {
			total += e.Amount
		}
	}
	return total
}

func (f *fakeLedgerRepo) AppendCredit(_ context.Context, telegramID int64, amount int64, entryType model.EntryType, now time.Time) (int64, error) {
	f.entries = append(f.entries, &model.LedgerEntry{
		UserTelegramID: telegramID,
		Type:           entryType,
		Amount:         amount,
		Status:         model.EntryStatusSuccess,
		CreatedAt:      now,
	})
	return f.sum(), nil
}

func (f *fakeLedgerRepo) AppendDebit(_ context.Context, telegramID int64, amount int64, entryType model.EntryType, now time.Time) (int64, error) {
	if f.sum() < amount {
		return 0, repository.ErrInsufficientFunds
	}
	f.entries = append(f.entries, &model.LedgerEntry{
		UserTelegramID: telegramID,
		Type:           entryType,
		Amount:         -amount,
		Status:         model.EntryStatusSuccess,
		CreatedAt:      now,
	})
	return f.sum(), nil
}

func (f *fakeLedgerRepo) GetBalance(_ context.Context, _ int64) (int64, error) {
	return f.sum(), nil
}

func (f *fakeLedgerRepo) GetLedgerEntries(_ context.Context, _ int64) ([]*model.LedgerEntry, error) {
	return f.entries, nil
}

func TestBalanceService_BalanceEqualsEntryFold(t *testing.T) {
	repo := &fakeLedgerRepo{}
	service := NewBalanceService(repo)
	ctx := context.Background()

	ops := []struct {
		credit bool
		amount int64
	}{
		{credit: true, amount: 100},
		{credit: true, amount: 500},
		{credit: false, amount: 50},
		{credit: false, amount: 1000}, // rejected, must not appear in the journal
		{credit: true, amount: 20},
		{credit: false, amount: 570}, // drains the balance exactly
	}

	for _, op := range ops {
		if op.credit {
			_, err := service.Credit(ctx, 7, op.amount, model.EntryDonation)
			assert.NoError(t, err)
			continue
		}

		wantRejected := op.amount > repo.sum()
		_, err := service.Debit(ctx, 7, op.amount, model.EntryDonation)
		if wantRejected {
			assert.ErrorIs(t, err, ErrInsufficientFunds)
		} else {
			assert.NoError(t, err)
		}
	}

	balance, err := service.Balance(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, repo.sum(), balance)
	assert.Equal(t, int64(0), balance)

	history, err := service.History(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, history, 5)
}

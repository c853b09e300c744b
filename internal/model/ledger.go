package model

import (
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	EntryDonation      EntryType = "donation"
	EntryPromo         EntryType = "promo"
	EntryReferralBonus EntryType = "referral_bonus"
	EntryAdjustment    EntryType = "adjustment"
)

type EntryStatus string

const (
	EntryStatusSuccess EntryStatus = "success"
	EntryStatusFailed  EntryStatus = "failed"
)

// LedgerEntry is an immutable record of a balance-affecting event.
// A user's balance is the sum of their entries.
type LedgerEntry struct {
	ID             uuid.UUID
	UserTelegramID int64
	Type           EntryType
	Amount         int64
	Status         EntryStatus
	CreatedAt      time.Time
}

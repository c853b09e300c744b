package model

import "time"

type PromoCode struct {
	Code      string
	Reward    int64
	ExpiresAt time.Time
	UsedCount int
	MaxUses   int
	CreatedAt time.Time
}

// Redemption records that a user has consumed a promo code. A (user, code)
// pair exists at most once.
type Redemption struct {
	UserTelegramID int64
	Code           string
	RedeemedAt     time.Time
}

package model

import "time"

type Referral struct {
	ReferredID int64
	ReferrerID int64
	CreatedAt  time.Time
	Earned     int64
}

type ReferralStats struct {
	Today  int
	Week   int
	Month  int
	Total  int
	Earned int64
}

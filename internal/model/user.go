package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	TelegramID       int64
	Username         string
	Email            string
	Role             Role
	ReferralCode     string
	RegistrationDate time.Time
	AuthDate         time.Time

	// Balance is derived from ledger entries, never stored directly.
	Balance int64
}

type TopDonator struct {
	TelegramID int64
	Username   string
	Donated    int64
}

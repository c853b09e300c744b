package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	MethodTelegram PaymentMethod = "telegram"
	MethodCard     PaymentMethod = "card"
	MethodYoomoney PaymentMethod = "yoomoney"
)

type DonationStatus string

const (
	DonationStatusSuccess DonationStatus = "success"
	DonationStatusFailed  DonationStatus = "failed"
)

type Donation struct {
	ID               uuid.UUID
	UserTelegramID   int64
	Amount           int64
	Method           PaymentMethod
	PromoCode        string
	Status           DonationStatus
	PaymentReference string
	CreatedAt        time.Time
}

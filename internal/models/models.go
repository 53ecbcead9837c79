package models

import "time"

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

type Order struct {
	ID          string
	OutTradeNo  string
	Amount      float64
	AmountCents int64
	PackageID   string
	PackageName string
	UserID      string
	Status      OrderStatus
	PaidAt      *time.Time
	Buyer       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID             string
	Email          string
	Role           string
	RemainingQuota int64
	CreatedAt      time.Time
}

type Link struct {
	ID              string
	Token           string
	UserID          string
	QuestionnaireID string
	Used            bool
	CreatedAt       time.Time
}

package services

import (
	"context"
	"time"

	"psylink/internal/models"
)

// Store seams consumed by the services. *store.Store satisfies all of
// them; tests substitute in-memory fakes.

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByOutTradeNo(ctx context.Context, outTradeNo string) (*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*models.Order, error)
	MarkOrderPaid(ctx context.Context, outTradeNo string, paidAt time.Time, buyer string) (bool, error)
}

type QuotaStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreditQuota(ctx context.Context, userID string, amount int64) (int64, error)
	DebitQuota(ctx context.Context, userID string, amount int64) (int64, error)
}

type LinkStore interface {
	CreateLink(ctx context.Context, link *models.Link) error
	ListLinksByUser(ctx context.Context, userID string) ([]*models.Link, error)
}

package services

import (
	"context"
	"errors"
	"time"

	"psylink/internal/models"
	"psylink/internal/money"
	"psylink/internal/packages"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMissingUserID     = errors.New("missing user id")
	ErrMissingOutTradeNo = errors.New("missing out trade no")
	ErrMissingPackage    = errors.New("missing package id")
	ErrForbidden         = errors.New("forbidden")
)

type OrderService struct {
	Orders OrderStore
	Logger *zap.Logger
}

type CreateOrderInput struct {
	OutTradeNo  string
	Amount      float64
	PackageID   string
	PackageName string
}

// CreateOrder records a pending order before the buyer is redirected to
// the gateway. The user id always comes from the authenticated request,
// never from the client payload.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if in.OutTradeNo == "" {
		return nil, ErrMissingOutTradeNo
	}
	if in.PackageID == "" {
		return nil, ErrMissingPackage
	}

	cents, err := money.Cents(in.Amount)
	if err != nil {
		return nil, err
	}

	pkg, known := packages.Lookup(in.PackageID)
	if known && pkg.Price != in.Amount {
		// The callback amount check is the enforcement point; a price
		// drift here is only worth an audit trail.
		s.Logger.Warn("order amount differs from package price",
			zap.String("package_id", in.PackageID),
			zap.Float64("package_price", pkg.Price),
			zap.Float64("amount", in.Amount),
		)
	}

	packageName := in.PackageName
	if packageName == "" && known {
		packageName = pkg.Name
	}

	order := &models.Order{
		ID:          uuid.NewString(),
		OutTradeNo:  in.OutTradeNo,
		Amount:      in.Amount,
		AmountCents: cents,
		PackageID:   in.PackageID,
		PackageName: packageName,
		UserID:      userID,
		Status:      models.OrderPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByOutTradeNo enforces ownership: non-admin callers only see
// their own orders.
func (s *OrderService) GetOrderByOutTradeNo(ctx context.Context, outTradeNo, userID, role string) (*models.Order, error) {
	order, err := s.Orders.GetOrderByOutTradeNo(ctx, outTradeNo)
	if err != nil {
		return nil, err
	}
	if role != "admin" && order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders returns the caller's orders; admins may list everything or
// an arbitrary user's orders.
func (s *OrderService) ListOrders(ctx context.Context, userID, role, filterUserID string) ([]*models.Order, error) {
	if role == "admin" {
		return s.Orders.ListOrders(ctx, filterUserID)
	}
	return s.Orders.ListOrders(ctx, userID)
}

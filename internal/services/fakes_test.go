package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"psylink/internal/models"
	"psylink/internal/store"
)

// fakeStore is an in-memory stand-in for the pg store with the same
// conditional-write semantics.
type fakeStore struct {
	mu    sync.Mutex
	byOut map[string]*models.Order
	users map[string]*models.User
	links []*models.Link

	creditCalls int
	failCredit  bool
	failCreate  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byOut: make(map[string]*models.Order),
		users: make(map[string]*models.User),
	}
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byOut[order.OutTradeNo]; exists {
		return store.ErrDuplicateOrder
	}
	cp := *order
	f.byOut[order.OutTradeNo] = &cp
	return nil
}

func (f *fakeStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.byOut {
		if order.ID == id {
			cp := *order
			return &cp, nil
		}
	}
	return nil, store.ErrOrderNotFound
}

func (f *fakeStore) GetOrderByOutTradeNo(ctx context.Context, outTradeNo string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.byOut[outTradeNo]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeStore) ListOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, order := range f.byOut {
		if userID == "" || order.UserID == userID {
			cp := *order
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkOrderPaid(ctx context.Context, outTradeNo string, paidAt time.Time, buyer string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.byOut[outTradeNo]
	if !ok || order.Status != models.OrderPending {
		return false, nil
	}
	order.Status = models.OrderPaid
	order.PaidAt = &paidAt
	order.Buyer = &buyer
	return true, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeStore) CreditQuota(ctx context.Context, userID string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creditCalls++
	if f.failCredit {
		return 0, errors.New("credit unavailable")
	}
	user, ok := f.users[userID]
	if !ok {
		return 0, store.ErrUserNotFound
	}
	user.RemainingQuota += amount
	return user.RemainingQuota, nil
}

func (f *fakeStore) DebitQuota(ctx context.Context, userID string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return 0, store.ErrUserNotFound
	}
	if user.RemainingQuota < amount {
		return 0, store.ErrInsufficientQuota
	}
	user.RemainingQuota -= amount
	return user.RemainingQuota, nil
}

func (f *fakeStore) CreateLink(ctx context.Context, link *models.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("link store unavailable")
	}
	cp := *link
	f.links = append(f.links, &cp)
	return nil
}

func (f *fakeStore) ListLinksByUser(ctx context.Context, userID string) ([]*models.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Link
	for _, link := range f.links {
		if link.UserID == userID {
			cp := *link
			out = append(out, &cp)
		}
	}
	return out, nil
}

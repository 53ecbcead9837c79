// Package events carries settlement notifications from the callback
// protocol to in-process subscribers (the admin websocket feed).
package events

import (
	"sync"
	"time"
)

type Settlement struct {
	OrderID       string    `json:"orderId"`
	OutTradeNo    string    `json:"outTradeNo"`
	UserID        string    `json:"userId,omitempty"`
	PackageID     string    `json:"packageId,omitempty"`
	AmountCents   int64     `json:"amountCents"`
	QuotaCredited int64     `json:"quotaCredited"`
	PaidAt        time.Time `json:"paidAt"`
}

const subscriberBuffer = 16

type Hub struct {
	mu   sync.Mutex
	subs map[chan Settlement]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Settlement]struct{})}
}

// Subscribe returns a receive channel and a cancel func. The channel is
// closed on cancel.
func (h *Hub) Subscribe() (<-chan Settlement, func()) {
	ch := make(chan Settlement, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish never blocks the settlement path: a subscriber that cannot
// keep up drops events.
func (h *Hub) Publish(ev Settlement) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

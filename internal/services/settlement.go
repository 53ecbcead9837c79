package services

import (
	"context"
	"errors"
	"time"

	"psylink/internal/events"
	"psylink/internal/money"
	"psylink/internal/packages"
	"psylink/internal/sign"
	"psylink/internal/store"

	"go.uber.org/zap"
)

// TradeSuccess is the gateway's literal success marker. Any other
// trade_status is acknowledged without touching state.
const TradeSuccess = "TRADE_SUCCESS"

type SettleOutcome int

const (
	SettleFailed SettleOutcome = iota
	SettleSuccess
	SettleReplay
	SettleIgnored
	SettleInvalidSignature
	SettleOrderNotFound
	SettleAmountMismatch
)

func (o SettleOutcome) String() string {
	switch o {
	case SettleSuccess:
		return "success"
	case SettleReplay:
		return "replay"
	case SettleIgnored:
		return "ignored"
	case SettleInvalidSignature:
		return "invalid_signature"
	case SettleOrderNotFound:
		return "order_not_found"
	case SettleAmountMismatch:
		return "amount_mismatch"
	default:
		return "failed"
	}
}

type PaymentService struct {
	Orders OrderStore
	Users  QuotaStore
	Events *events.Hub
	Logger *zap.Logger

	PID       string
	Key       string
	Gateway   string
	NotifyURL string
	ReturnURL string
}

// Settle processes one inbound gateway callback. The gateway delivers
// at least once and may deliver concurrently; the pending→paid
// transition is a conditional write, and quota is credited only by the
// caller that actually performed the transition. A replay of an already
// paid order is a terminal success, not an error, so the gateway stops
// retrying.
func (s *PaymentService) Settle(ctx context.Context, params map[string]string) (SettleOutcome, error) {
	if err := sign.Verify(params, s.Key); err != nil {
		s.Logger.Warn("callback signature rejected",
			zap.String("out_trade_no", params["out_trade_no"]),
			zap.Error(err),
		)
		return SettleInvalidSignature, err
	}

	tradeStatus := params["trade_status"]
	outTradeNo := params["out_trade_no"]
	callbackMoney := params["money"]
	buyer := params["buyer"]

	if tradeStatus != TradeSuccess {
		s.Logger.Info("callback with non-success status acknowledged",
			zap.String("out_trade_no", outTradeNo),
			zap.String("trade_status", tradeStatus),
		)
		return SettleIgnored, nil
	}

	order, err := s.Orders.GetOrderByOutTradeNo(ctx, outTradeNo)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			// 404 keeps the gateway retrying: either the order is not
			// visible yet or something is wrong enough to surface.
			s.Logger.Warn("callback for unknown order", zap.String("out_trade_no", outTradeNo))
			return SettleOrderNotFound, nil
		}
		return SettleFailed, err
	}

	callbackCents, perr := money.ParseCents(callbackMoney)
	if perr != nil || callbackCents != order.AmountCents {
		s.Logger.Error("callback amount mismatch",
			zap.String("out_trade_no", outTradeNo),
			zap.Float64("order_amount", order.Amount),
			zap.Int64("order_amount_cents", order.AmountCents),
			zap.String("callback_money", callbackMoney),
			zap.Int64("callback_cents", callbackCents),
		)
		return SettleAmountMismatch, nil
	}

	paidAt := time.Now().UTC()
	transitioned, err := s.Orders.MarkOrderPaid(ctx, outTradeNo, paidAt, buyer)
	if err != nil {
		return SettleFailed, err
	}
	if !transitioned {
		s.Logger.Info("callback replay for settled order acknowledged",
			zap.String("out_trade_no", outTradeNo),
		)
		return SettleReplay, nil
	}

	var credited int64
	if order.UserID != "" && order.PackageID != "" {
		if pkg, ok := packages.Lookup(order.PackageID); ok {
			credited = pkg.QuotaCredit()
			balance, cerr := s.Users.CreditQuota(ctx, order.UserID, credited)
			if cerr != nil {
				// The order is already paid; the miss is surfaced for a
				// reconciliation sweep instead of being retried into a
				// double credit.
				s.Logger.Error("quota credit failed after order settled",
					zap.String("out_trade_no", outTradeNo),
					zap.String("user_id", order.UserID),
					zap.Int64("quota", credited),
					zap.Error(cerr),
				)
				return SettleFailed, cerr
			}
			s.Logger.Info("quota credited",
				zap.String("user_id", order.UserID),
				zap.String("package_id", order.PackageID),
				zap.Int64("quota", credited),
				zap.Int64("balance", balance),
			)
		} else {
			s.Logger.Warn("settled order references unknown package",
				zap.String("out_trade_no", outTradeNo),
				zap.String("package_id", order.PackageID),
			)
		}
	}

	s.Logger.Info("order settled",
		zap.String("order_id", order.ID),
		zap.String("out_trade_no", outTradeNo),
		zap.Int64("amount_cents", order.AmountCents),
	)

	if s.Events != nil {
		s.Events.Publish(events.Settlement{
			OrderID:       order.ID,
			OutTradeNo:    order.OutTradeNo,
			UserID:        order.UserID,
			PackageID:     order.PackageID,
			AmountCents:   order.AmountCents,
			QuotaCredited: credited,
			PaidAt:        paidAt,
		})
	}
	return SettleSuccess, nil
}

package http

import (
	"net/http"

	"psylink/internal/services"
	"psylink/internal/sign"

	"go.uber.org/zap"
)

// PaymentNotify is the gateway's asynchronous callback endpoint. The
// response bodies and status codes are the gateway's protocol: any 2xx
// stops retries, so a replayed success still answers "success", while
// an unknown order answers 404 to keep the gateway retrying.
func (h *Handler) PaymentNotify(w http.ResponseWriter, r *http.Request) {
	params := sign.FromQuery(r.URL.Query())

	outcome, err := h.Payments.Settle(r.Context(), params)
	recordSettlement(outcome.String())

	switch outcome {
	case services.SettleInvalidSignature:
		writeText(w, http.StatusBadRequest, err.Error())
	case services.SettleIgnored:
		writeText(w, http.StatusOK, "ignore")
	case services.SettleOrderNotFound:
		writeText(w, http.StatusNotFound, "order not found")
	case services.SettleAmountMismatch:
		writeText(w, http.StatusBadRequest, "amount mismatch")
	case services.SettleSuccess, services.SettleReplay:
		writeText(w, http.StatusOK, "success")
	default:
		h.Logger.Error("settlement failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "internal error")
	}
}

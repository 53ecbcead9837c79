package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"psylink/internal/auth"
	"psylink/internal/models"
	"psylink/internal/money"
	"psylink/internal/services"
	"psylink/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Orders   *services.OrderService
	Payments *services.PaymentService
	Links    *services.LinkService
	Logger   *zap.Logger
}

func NewHandler(orders *services.OrderService, payments *services.PaymentService, links *services.LinkService, logger *zap.Logger) *Handler {
	return &Handler{Orders: orders, Payments: payments, Links: links, Logger: logger}
}

type createOrderRequest struct {
	OutTradeNo  string  `json:"outTradeNo"`
	Amount      float64 `json:"amount"`
	PackageID   string  `json:"packageId"`
	PackageName string  `json:"packageName"`
}

type orderResponse struct {
	ID          string  `json:"id"`
	OutTradeNo  string  `json:"outTradeNo"`
	Amount      float64 `json:"amount"`
	AmountCents int64   `json:"amountCents"`
	PackageID   string  `json:"packageId,omitempty"`
	PackageName string  `json:"packageName,omitempty"`
	UserID      string  `json:"userId,omitempty"`
	Status      string  `json:"status"`
	PaidAt      string  `json:"paidAt,omitempty"`
	Buyer       string  `json:"buyer,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:          order.ID,
		OutTradeNo:  order.OutTradeNo,
		Amount:      order.Amount,
		AmountCents: order.AmountCents,
		PackageID:   order.PackageID,
		PackageName: order.PackageName,
		UserID:      order.UserID,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
	}
	if order.PaidAt != nil {
		resp.PaidAt = order.PaidAt.Format(time.RFC3339)
	}
	if order.Buyer != nil {
		resp.Buyer = *order.Buyer
	}
	return resp
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	order, err := h.Orders.CreateOrder(r.Context(), identity.UserID, services.CreateOrderInput{
		OutTradeNo:  req.OutTradeNo,
		Amount:      req.Amount,
		PackageID:   req.PackageID,
		PackageName: req.PackageName,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingOutTradeNo),
			errors.Is(err, services.ErrMissingPackage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, money.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "invalid amount")
		case errors.Is(err, store.ErrDuplicateOrder):
			writeError(w, http.StatusBadRequest, "duplicate out trade no")
		default:
			h.Logger.Error("create order failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "create order failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	outTradeNo := chi.URLParam(r, "outTradeNo")
	order, err := h.Orders.GetOrderByOutTradeNo(r.Context(), outTradeNo, identity.UserID, identity.Role)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			h.Logger.Error("get order failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "get order failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.Orders.ListOrders(r.Context(), identity.UserID, identity.Role, r.URL.Query().Get("userId"))
	if err != nil {
		h.Logger.Error("list orders failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list orders failed")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": resp, "total": len(resp)})
}

type prepareRequest struct {
	Name       string  `json:"name"`
	Money      float64 `json:"money"`
	OutTradeNo string  `json:"outTradeNo"`
	Param      string  `json:"param"`
}

func (h *Handler) PreparePayment(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.Payments.Prepare(services.PrepareInput{
		Name:       req.Name,
		Money:      req.Money,
		OutTradeNo: req.OutTradeNo,
		Param:      req.Param,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingName),
			errors.Is(err, services.ErrMissingOutTradeNo):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, money.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "invalid amount")
		default:
			h.Logger.Error("prepare payment failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "prepare payment failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type createLinkRequest struct {
	QuestionnaireID string `json:"questionnaireId"`
}

type linkResponse struct {
	ID              string `json:"id"`
	Token           string `json:"token"`
	QuestionnaireID string `json:"questionnaireId,omitempty"`
	Used            bool   `json:"used"`
	CreatedAt       string `json:"createdAt"`
}

func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	link, err := h.Links.CreateLink(r.Context(), identity.UserID, req.QuestionnaireID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInsufficientQuota):
			writeError(w, http.StatusBadRequest, "insufficient quota")
		case errors.Is(err, store.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.Logger.Error("create link failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "create link failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, linkResponse{
		ID:              link.ID,
		Token:           link.Token,
		QuestionnaireID: link.QuestionnaireID,
		Used:            link.Used,
		CreatedAt:       link.CreatedAt.Format(time.RFC3339),
	})
}

func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	links, err := h.Links.ListLinks(r.Context(), identity.UserID)
	if err != nil {
		h.Logger.Error("list links failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list links failed")
		return
	}

	resp := make([]linkResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, linkResponse{
			ID:              link.ID,
			Token:           link.Token,
			QuestionnaireID: link.QuestionnaireID,
			Used:            link.Used,
			CreatedAt:       link.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": resp, "total": len(resp)})
}

package http

import (
	"net/http"

	"psylink/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler, eventsHandler *EventsHandler, verifier auth.Verifier, logger *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(metricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", prometheusHandler())

	// The gateway authenticates with its signature, not a token.
	r.Get("/zpay/notify", handler.PaymentNotify)

	r.Group(func(r chi.Router) {
		r.Use(verifier.Middleware)

		r.Post("/zpay/prepare", handler.PreparePayment)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handler.CreateOrder)
			r.Get("/", handler.ListOrders)
			r.Get("/{outTradeNo}", handler.GetOrder)
		})

		r.Route("/links", func(r chi.Router) {
			r.Post("/", handler.CreateLink)
			r.Get("/", handler.ListLinks)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Method(http.MethodGet, "/admin/events", eventsHandler)
		})
	})

	return &Server{Router: r}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"psylink/internal/auth"
	"psylink/internal/config"
	"psylink/internal/db"
	"psylink/internal/events"
	internalhttp "psylink/internal/http"
	"psylink/internal/services"
	"psylink/internal/store"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer pool.Close()

	st := store.New(pool)
	hub := events.NewHub()

	orderSvc := &services.OrderService{Orders: st, Logger: logger}
	paymentSvc := &services.PaymentService{
		Orders:    st,
		Users:     st,
		Events:    hub,
		Logger:    logger,
		PID:       cfg.ZPay.PID,
		Key:       cfg.ZPay.Key,
		Gateway:   cfg.ZPay.Gateway,
		NotifyURL: cfg.ZPay.NotifyURL,
		ReturnURL: cfg.ZPay.ReturnURL,
	}
	linkSvc := &services.LinkService{Links: st, Users: st, Logger: logger}

	verifier := auth.Verifier{Secret: []byte(cfg.Auth.Secret)}
	h := internalhttp.NewHandler(orderSvc, paymentSvc, linkSvc, logger)
	eventsHandler := &internalhttp.EventsHandler{Hub: hub, Logger: logger}
	srv := internalhttp.NewServer(h, eventsHandler, verifier, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		logger.Info("api listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}

package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradecore/src/config"
	"tradecore/src/engine"
	"tradecore/src/handler"
	"tradecore/src/repository"
)

// Deps are the wired collaborators the HTTP surface exposes.
type Deps struct {
	Engine     *engine.Engine
	ModeStore  *config.ModeStore
	AuditRepo  *repository.TradeAuditRepository
	SignalRepo *repository.SignalRepository
}

func StartServer(port string, deps Deps) {
	// Router with middleware
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})

	r.Post("/signals", handler.ExecuteSignalHandler(deps.Engine))
	r.Post("/signals/queue", handler.QueueSignalHandler(deps.SignalRepo))
	r.Get("/trading-mode", handler.GetTradingModeHandler(deps.ModeStore))
	r.Put("/trading-mode", handler.SetTradingModeHandler(deps.ModeStore))
	r.Get("/audit", handler.SearchTradeAuditsHandler(deps.AuditRepo))

	// Graceful server
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

// Пакет server — HTTP сървър на Declaration Service с graceful shutdown.
// Без TLS — TLS termination е на API Gateway пред услугата.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/bgforms/declaration-service/internal/api/handlers"
	"github.com/bgforms/declaration-service/internal/config"
)

// Server — HTTP сървър на Declaration Service.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New създава HTTP сървър с настроени маршрути и middleware.
// middlewares се прилагат в реда на подаване (metrics, logging).
func New(cfg *config.Config, logger *slog.Logger, handler *handlers.APIHandler, middlewares ...func(http.Handler) http.Handler) *Server {
	router := chi.NewRouter()

	for _, mw := range middlewares {
		router.Use(mw)
	}

	handler.Routes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run стартира сървъра и чака сигнал за завършване (SIGINT, SIGTERM).
// При сигнал се изпълнява graceful shutdown с конфигурирания таймаут.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP сървърът е стартиран",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал за завършване", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("грешка на HTTP сървъра: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Изпълнява се graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("грешка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP сървърът е спрян")
	return nil
}

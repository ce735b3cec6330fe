// Точка на вход на Declaration Service — REST услуга за генериране на
// PDF декларации с лични данни и съхранението им в обектно хранилище.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bgforms/declaration-service/internal/api/handlers"
	"github.com/bgforms/declaration-service/internal/api/middleware"
	"github.com/bgforms/declaration-service/internal/config"
	"github.com/bgforms/declaration-service/internal/render"
	"github.com/bgforms/declaration-service/internal/server"
	"github.com/bgforms/declaration-service/internal/service"
	"github.com/bgforms/declaration-service/internal/storage/blobstore"
)

func main() {
	// Зареждане на конфигурацията от променливи на средата
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Конфигурационна грешка: %v\n", err)
		os.Exit(1)
	}

	// Настройка на логера
	logger := config.SetupLogger(cfg)
	logger.Info("Declaration Service стартира",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("bucket", cfg.Bucket),
		slog.String("prefix", cfg.ObjectPrefix),
		slog.Duration("url_ttl", cfg.URLTTL),
	)

	// --- Инициализация на компонентите ---

	ctx := context.Background()

	// 1. Рендериране — зарежда бланката, инсталира шрифта и изпълнява
	// пробно рендериране. Негоден шрифт или бланка спират стартирането.
	renderer, err := render.New(cfg, logger)
	if err != nil {
		logger.Error("Грешка при инициализация на рендерирането", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Хранилище за документи (GCS)
	store, err := blobstore.NewGCS(ctx, cfg, logger)
	if err != nil {
		logger.Error("Грешка при инициализация на хранилището", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cErr := store.Close(); cErr != nil {
			logger.Warn("Грешка при затваряне на GCS клиента", slog.String("error", cErr.Error()))
		}
	}()

	// 3. Оркестратор
	formSvc := service.NewFormService(renderer, store, logger)

	// 4. Handlers
	formsHandler := handlers.NewFormsHandler(formSvc)
	healthHandler := handlers.NewHealthHandler(
		handlers.ReadinessFunc(renderer.Ready),
	)
	apiHandler := handlers.NewAPIHandler(formsHandler, healthHandler)

	// 5. HTTP сървър с метрики и логиране на заявките
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	if err := srv.Run(); err != nil {
		logger.Error("Грешка на сървъра", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Declaration Service е спрян")
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-client/apiclient"
	"github.com/Dosada05/tournament-client/brackets"
	"github.com/Dosada05/tournament-client/config"
	"github.com/Dosada05/tournament-client/db"
	"github.com/Dosada05/tournament-client/handlers"
	"github.com/Dosada05/tournament-client/metrics"
	"github.com/Dosada05/tournament-client/repositories"
	api "github.com/Dosada05/tournament-client/routes"
	"github.com/Dosada05/tournament-client/services"
	"github.com/Dosada05/tournament-client/storage"
	"github.com/Dosada05/tournament-client/voting"
)

const sweepInterval = 30 * time.Second // How often expired catalog entries are swept

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("marker_store", cfg.MarkerStore))

	metrics.Register()
	recorder := metrics.Recorder{}

	// Клиент удаленного сервиса турниров
	remote := apiclient.New(cfg.APIBaseURL, apiclient.Options{
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Location:  cfg.Location,
		Logger:    logger,
		Observer:  recorder,
	})

	// Локальное состояние: маркеры голосов и итоги
	store, closeStore, err := openStateStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open state store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("state store ready", slog.String("kind", cfg.MarkerStore))

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация сервисов
	catalog := services.NewCatalog(remote, cfg.CacheTTL)
	tournamentService := services.NewTournamentService(catalog, remote, store, logger)
	participationService := services.NewParticipationService(catalog, remote, wsHub, recorder, logger)
	bracketService := services.NewBracketService(services.BracketServiceConfig{
		Catalog:   catalog,
		Remote:    remote,
		Summaries: store,
		Publisher: wsHub,
		Observer:  recorder,
		Policy:    brackets.ResultPolicy{AllowReset: cfg.AllowResultReset},
		Logger:    logger,
	})
	applicationService := services.NewApplicationService(catalog, remote, wsHub, recorder, logger)
	votingService := services.NewVotingService(catalog, remote, voting.NewGuard(store), recorder, logger)
	logger.Info("Services initialized")

	// Периодическая очистка устаревших записей каталога
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		logger.Info("Catalog sweeper started", slog.Duration("interval", sweepInterval))

		for range ticker.C {
			if n := catalog.Sweep(); n > 0 {
				recorder.CacheEvicted(n)
				logger.Debug("Sweeper: expired catalog entries removed", slog.Int("count", n))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	participantHandler := handlers.NewParticipantHandler(participationService)
	matchHandler := handlers.NewMatchHandler(bracketService, cfg.Location)
	votingHandler := handlers.NewVotingHandler(votingService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, cfg.AllowedOrigins, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:      cfg.JWTSecretKey,
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
		},
		tournamentHandler,
		participantHandler,
		matchHandler,
		votingHandler,
		applicationHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// openStateStore выбирает хранилище по MARKER_STORE. Возвращаемая функция
// закрывает соединение с БД, если оно было открыто.
func openStateStore(cfg *config.Config, logger *slog.Logger) (storage.StateStore, func(), error) {
	noop := func() {}

	switch cfg.MarkerStore {
	case config.MarkerStorePostgres:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to database: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.EnsureSchema(ctx, dbConn); err != nil {
			_ = dbConn.Close()
			return nil, noop, fmt.Errorf("ensure schema: %w", err)
		}
		return repositories.NewPostgresStateStore(dbConn), closeDB(dbConn, logger), nil

	case config.MarkerStoreR2:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r2, err := storage.NewCloudflareR2Store(ctx, storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		})
		if err != nil {
			return nil, noop, err
		}
		return r2, noop, nil

	default:
		logger.Warn("using in-memory state store, vote markers are lost on restart")
		return storage.NewMemoryStore(), noop, nil
	}
}

func closeDB(dbConn *sql.DB, logger *slog.Logger) func() {
	return func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}
}

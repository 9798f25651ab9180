package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/civic_response_system/internal/config"
	v1 "github.com/shenikar/civic_response_system/internal/handler/http/v1"
	"github.com/shenikar/civic_response_system/internal/notify"
	"github.com/shenikar/civic_response_system/internal/privacy"
	"github.com/shenikar/civic_response_system/internal/reconcile"
	"github.com/shenikar/civic_response_system/internal/repository"
	"github.com/shenikar/civic_response_system/internal/repository/memstore"
	"github.com/shenikar/civic_response_system/internal/service"
	"github.com/shenikar/civic_response_system/internal/store"
	"github.com/shenikar/civic_response_system/internal/webhook"
	"github.com/shenikar/civic_response_system/pkg/logger"
	"github.com/shenikar/civic_response_system/pkg/postgres"
	redisclient "github.com/shenikar/civic_response_system/pkg/redis"

	_ "github.com/shenikar/civic_response_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Civic Response System API
// @version 1.0
// @description Incident coordination and alerting for civic-safety responders.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// loader - зеркало, заполняемое из хранилища при старте
type loader interface {
	Load(ctx context.Context) error
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Контекст отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализация Redis клиента: лента изменений и очередь вебхуков
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")
	}

	// Хранилище: PostgreSQL с лентой изменений в Redis либо память процесса
	var backend store.Backend
	if cfg.DatabaseURL != "" {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")
		backend = repository.NewBackend(dbpool, repository.NewChangeFeed(redisClient, log), log)
	} else {
		log.Warn("DATABASE_URL is not set, using in-memory store")
		backend = memstore.New()
	}

	g, gctx := errgroup.WithContext(ctx)

	// Поверхности уведомлений оператора
	surfaces := notify.Multi{}
	if cfg.WebhookURL != "" {
		surfaces = append(surfaces, webhook.NewPublisher(redisClient, cfg.NotifyDedupeTTL))
		worker := webhook.NewWorker(redisClient, log, cfg)
		g.Go(func() error { return worker.Run(gctx) })
	}
	if cfg.MQTTBroker != "" {
		client, err := notify.NewMQTTClient(notify.MQTTConfig{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		})
		if err != nil {
			log.Fatalf("Failed to connect to MQTT broker: %v", err)
		}
		mqttSurface := notify.NewMQTTSurface(client, cfg.MQTTTopicPrefix)
		defer mqttSurface.Close()
		surfaces = append(surfaces, mqttSurface)
		log.WithField("broker", cfg.MQTTBroker).Info("Successfully connected to MQTT broker")
	}

	// Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(reg)

	// Инициализация сервисов
	encoder := privacy.NewGridEncoder(cfg.GridCellDegrees)
	responders := service.NewResponderDirectory(backend, encoder, log, metrics)
	inbox := service.NewAlertInbox(backend, surfaces, cfg.NotifyTimeout, log, metrics)
	dispatcher := service.NewDispatcher(backend, responders, inbox, log, metrics)
	incidents := service.NewIncidentStore(backend, encoder, responders, dispatcher, log, metrics)
	messages := service.NewMessagingChannel(backend, log, metrics)
	workspace := service.NewWorkspace(backend, incidents, responders, log, metrics)

	// Начальная загрузка зеркал; респондеры первыми, чтобы назначения находили профили
	for _, l := range []loader{responders, incidents, inbox, messages, workspace} {
		if err := l.Load(ctx); err != nil {
			log.Fatalf("Failed to load state from store: %v", err)
		}
	}

	// Живые обновления из хранилища
	reconciler := reconcile.New(backend, reconcile.Mirrors{
		Incidents:     incidents,
		Alerts:        inbox,
		Messages:      messages,
		Responders:    responders,
		Coordinations: workspace,
	}, reconcile.Policy(cfg.ReconcilePolicy), log, reconcile.NewMetrics(reg))
	g.Go(func() error { return reconciler.Run(gctx) })
	if err := reconciler.WatchAll(gctx); err != nil {
		log.WithError(err).Warn("Live updates start paused")
	}
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ResumeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if reconciler.Paused() == 0 {
					continue
				}
				if err := reconciler.Resume(gctx); err != nil {
					log.WithError(err).Warn("Failed to resume paused subscriptions")
				}
			}
		}
	})

	// Инициализация хэндлеров
	handler := v1.NewHandler(v1.Services{
		Incidents:  incidents,
		Responders: responders,
		Inbox:      inbox,
		Messages:   messages,
		Workspace:  workspace,
		Watcher:    reconciler,
	}, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Метрики и Swagger UI
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Service stopped with error")
	}
	if err := reconciler.Close(); err != nil {
		log.WithError(err).Warn("Failed to close subscriptions")
	}
	inbox.Wait()
	log.Info("Server gracefully stopped")
}

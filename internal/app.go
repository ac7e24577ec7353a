package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	audit_adapter "github.com/MoguchiyDuh/televito/internal/adapters/audit"
	"github.com/MoguchiyDuh/televito/internal/adapters/grammar"
	logger_adapter "github.com/MoguchiyDuh/televito/internal/adapters/logger"
	ollama_adapter "github.com/MoguchiyDuh/televito/internal/adapters/ollama"
	postgres_adapter "github.com/MoguchiyDuh/televito/internal/adapters/postgres"
	rabbitmq_adapter "github.com/MoguchiyDuh/televito/internal/adapters/rabbitmq"
	"github.com/MoguchiyDuh/televito/internal/adapters/rest"
	"github.com/MoguchiyDuh/televito/internal/adapters/telegramfeed"
	"github.com/MoguchiyDuh/televito/internal/configs"
	"github.com/MoguchiyDuh/televito/internal/constants"
	"github.com/MoguchiyDuh/televito/internal/contextkeys"
	"github.com/MoguchiyDuh/televito/internal/core/port"
	usecases_port "github.com/MoguchiyDuh/televito/internal/core/port/usecases"
	"github.com/MoguchiyDuh/televito/internal/core/usecase"
	fluentlogger "github.com/MoguchiyDuh/televito/pkg/fluent_logger"
	"github.com/MoguchiyDuh/televito/pkg/postgres"
	"github.com/MoguchiyDuh/televito/pkg/rabbitmq/rabbitmq_common"
	"github.com/MoguchiyDuh/televito/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App – структура приложения
type App struct {
	config        *configs.AppConfig
	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	fluentClient  *fluent.Fluent
	logger        port.LoggerPort
	baseLogger    port.LoggerPort

	restServer *rest.Server

	ingestFeed   usecases_port.IngestFeedPort
	purgeExpired usecases_port.PurgeExpiredPort
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName, // Используем имя приложения как префикс
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. СОЗДАЕМ БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. НИЗКОУРОВНЕВЫЕ ЗАВИСИМОСТИ ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	auditSink, err := audit_adapter.NewFileSink(appConfig.AuditLogPath)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create audit sink: %w", err)
	}

	// Публикация событий сверки опциональна: без RabbitMQ сервис
	// работает как обычный парсер с REST API.
	var connManager *rabbitmq_common.ConnectionManager
	var eventProducer *rabbitmq_producer.Publisher
	var listingEvents port.ListingEventsPort
	if appConfig.RabbitMQ.Enabled {
		connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger)
		connManager, err = rabbitmq_common.GetManager(appConfig.RabbitMQ.URL, connManagerBridge)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			dbPool.Close()
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
		producerCfg := rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.ListingEventsExchange,
			ExchangeType:             "direct",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
		}
		eventProducer, err = rabbitmq_producer.NewPublisher(producerCfg, connManager)
		if err != nil {
			appLogger.Error("Failed to create event producer", err, port.Fields{"url": appConfig.RabbitMQ.URL})
			dbPool.Close()
			return nil, fmt.Errorf("failed to create event producer: %w", err)
		}
		appLogger.Info("RabbitMQ Event Producer initialized.", nil)

		listingEvents, err = rabbitmq_adapter.NewRabbitMQListingEventsAdapter(eventProducer, constants.RoutingKeyListingEvents)
		if err != nil {
			eventProducer.Close()
			dbPool.Close()
			return nil, fmt.Errorf("failed to create listing events adapter: %w", err)
		}
	}

	// --- 4. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	listingStorage, err := postgres_adapter.NewListingStorageAdapter(dbPool)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create listing storage adapter: %w", err)
	}
	listingQuery, err := postgres_adapter.NewListingQueryAdapter(dbPool)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create listing query adapter: %w", err)
	}

	ollamaClient, err := ollama_adapter.NewClient(appConfig.Ollama.APIURL, appConfig.Ollama.Model)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	fallbackExtractor, err := ollama_adapter.NewFallbackExtractor(ollamaClient, auditSink, port.SamplingOptions{
		Temperature: appConfig.Ollama.Temperature,
		TopP:        appConfig.Ollama.TopP,
	})
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create fallback extractor: %w", err)
	}

	feedAdapter, err := telegramfeed.NewAdapter(telegramfeed.Config{
		APIID:       appConfig.Telegram.APIID,
		APIHash:     appConfig.Telegram.APIHash,
		Channel:     appConfig.Telegram.Channel,
		SessionFile: appConfig.Telegram.SessionFile,
		BatchSize:   appConfig.Telegram.BatchSize,
	}, baseLogger.WithFields(port.Fields{"component": "telegram_feed"}))
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create telegram feed adapter: %w", err)
	}

	appLogger.Info("All outgoing adapters initialized.", nil)

	// --- 5. USE CASES ---
	extractUseCase := usecase.NewExtractListingUseCase(grammar.NewExtractor(), fallbackExtractor)
	reconcileUseCase := usecase.NewReconcileListingUseCase(listingStorage, auditSink, listingEvents)
	ingestUseCase := usecase.NewIngestFeedUseCase(
		feedAdapter, extractUseCase, reconcileUseCase, listingStorage,
		appConfig.Ingest.Pace, appConfig.Ingest.Lookback,
	)
	purgeUseCase := usecase.NewPurgeExpiredUseCase(listingStorage, appConfig.Ingest.Retention)
	findListingsUseCase := usecase.NewFindListingsUseCase(listingQuery)
	getListingUseCase := usecase.NewGetListingUseCase(listingQuery)
	appLogger.Info("All use cases initialized.", nil)

	// --- 6. ВХОДЯЩИЕ АДАПТЕРЫ ---
	listingHandlers := rest.NewListingHandler(findListingsUseCase, getListingUseCase)
	restServer := rest.NewServer(appConfig.RestPort, listingHandlers, baseLogger)
	appLogger.Info("REST server initialized.", nil)

	application := &App{
		config:        appConfig,
		dbPool:        dbPool,
		connManager:   connManager,
		eventProducer: eventProducer,
		fluentClient:  fluentClient,
		logger:        appLogger,
		baseLogger:    baseLogger,
		restServer:    restServer,
		ingestFeed:    ingestUseCase,
		purgeExpired:  purgeUseCase,
	}

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// Создаем единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	// Используем WaitGroup для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := a.restServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error stopping REST server", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.eventProducer != nil {
			if err := a.eventProducer.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}
		if a.connManager != nil {
			if err := a.connManager.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			a.logger.Info("Closing Fluent Bit connection...", nil)
			if err := a.fluentClient.Close(); err != nil {
				log.Printf("App: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	componentErrors := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.restServer.Start(); err != nil && err != http.ErrServerClosed {
			componentErrors <- fmt.Errorf("REST server error: %w", err)
		}
	}()

	// Проход по ленте сразу при старте и затем по расписанию.
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.runIngestLoop(appCtx)
	}()

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-componentErrors:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

// runIngestLoop выполняет проходы по ленте: первый сразу, дальше по таймеру.
func (a *App) runIngestLoop(ctx context.Context) {
	loopLogger := a.logger.WithFields(port.Fields{"component": "ingest_loop"})

	ticker := time.NewTicker(a.config.Ingest.Interval)
	defer ticker.Stop()

	a.runIngestPass(ctx, loopLogger)
	for {
		select {
		case <-ctx.Done():
			loopLogger.Info("Ingest loop stopped.", nil)
			return
		case <-ticker.C:
			a.runIngestPass(ctx, loopLogger)
		}
	}
}

func (a *App) runIngestPass(ctx context.Context, loopLogger port.LoggerPort) {
	traceID := uuid.New().String()
	passLogger := a.baseLogger.WithFields(port.Fields{"trace_id": traceID})
	passCtx := contextkeys.ContextWithTraceID(contextkeys.ContextWithLogger(ctx, passLogger), traceID)

	if _, err := a.purgeExpired.Execute(passCtx); err != nil {
		loopLogger.Error("Failed to purge expired listings", err, nil)
	}

	stats, err := a.ingestFeed.Execute(passCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		loopLogger.Error("Feed pass failed", err, nil)
		return
	}
	loopLogger.Info("Feed pass completed", port.Fields{
		"seen":     stats.Seen,
		"inserted": stats.Inserted,
		"updated":  stats.Updated,
		"skipped":  stats.Skipped,
		"failed":   stats.Failed,
	})
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}

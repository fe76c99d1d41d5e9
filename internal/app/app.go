package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/config"
	"github.com/RubachokBoss/mx-portal/internal/delivery/httpd"
	"github.com/RubachokBoss/mx-portal/internal/repository"
	"github.com/RubachokBoss/mx-portal/internal/service"
	"github.com/RubachokBoss/mx-portal/internal/service/integration"
	"github.com/RubachokBoss/mx-portal/internal/service/storage"
)

type App struct {
	server *http.Server
	logger zerolog.Logger
	config *config.Config
	db     *sql.DB
	events integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	// Создаем интеграционные клиенты
	events, err := integration.NewRabbitMQClient(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.AssignedKey,
		cfg.RabbitMQ.ResultKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ client")
		// Продолжаем без RabbitMQ, это допустимо для разработки
		events = nil
	}

	var archive storage.ArchiveStore
	if cfg.Storage.Enabled {
		archive, err = storage.NewMinIOStore(
			cfg.Storage.Endpoint,
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			cfg.Storage.Bucket,
			cfg.Storage.Region,
			cfg.Storage.UseSSL,
			cfg.Storage.ConnectTimeout,
			log,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create object storage client")
			// Архив писем опционален, работаем без него
			archive = nil
		}
	}

	var sms integration.SMSClient
	if cfg.SMS.Enabled {
		sms = integration.NewSMSClient(
			cfg.SMS.BaseURL,
			cfg.SMS.AccountSID,
			cfg.SMS.AuthToken,
			cfg.SMS.FromNumber,
			cfg.SMS.Timeout,
			cfg.SMS.RetryCount,
			cfg.SMS.RetryDelay,
			log,
		)
	}

	// Создаем репозитории
	workRepo := repository.NewWorkRepository(db, log)
	packRepo := repository.NewPackRepository(db, log)
	assignedRepo := repository.NewAssignedWorkRepository(db, log)
	donePackRepo := repository.NewDonePackRepository(db, log)
	notificationRepo := repository.NewNotificationRepository(db, log)

	// Создаем сервисы
	catalogService := service.NewCatalogService(workRepo, packRepo, log)
	assignmentService := service.NewAssignmentService(packRepo, assignedRepo, events, log)
	progressService := service.NewProgressService(assignedRepo, donePackRepo, cfg.Portal.StartBatchSize, log)
	ingestService := service.NewIngestService(workRepo, assignedRepo, notificationRepo, archive, events, log)
	viewService := service.NewViewService(assignedRepo, donePackRepo, log)
	contactService := service.NewContactService(sms, cfg.SMS.ToNumber, cfg.SMS.RateLimit, log)

	// Создаем обработчики
	handler := httpd.NewHandler(
		catalogService,
		assignmentService,
		progressService,
		ingestService,
		viewService,
		contactService,
		log,
	)

	// Создаем роутер
	router := chi.NewRouter()

	// Настраиваем middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Настраиваем CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// Регистрируем маршруты
	handler.RegisterRoutes(router)

	// Создаем HTTP сервер
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server: server,
		logger: log,
		config: cfg,
		db:     db,
		events: events,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting portal service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down portal service...")

	// Закрываем RabbitMQ соединение
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	// Закрываем соединение с БД
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	// Останавливаем сервер
	return a.server.Shutdown(ctx)
}

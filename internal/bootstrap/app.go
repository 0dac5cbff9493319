package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"ink2deck/internal/ai"
	appsvc "ink2deck/internal/app"
	"ink2deck/internal/cache"
	"ink2deck/internal/config"
	"ink2deck/internal/document"
	"ink2deck/internal/ocr"
	"ink2deck/internal/platform/logger"
	mysqlClient "ink2deck/internal/platform/mysql"
	rabbitmqClient "ink2deck/internal/platform/rabbitmq"
	redisClient "ink2deck/internal/platform/redis"
	"ink2deck/internal/repository"
	"ink2deck/internal/worker"
)

type App struct {
	Config *config.Config
	Log    zerolog.Logger

	MySQL    *gorm.DB
	StoreErr error
	Redis    *redis.Client
	MQConn   *amqp.Connection

	Auth      *appsvc.AuthService
	Converter *appsvc.ConvertService
	History   *appsvc.HistoryService
	Sessions  *cache.SessionStore
	Artifacts *cache.ArtifactStore
	Backend   cache.Backend

	Strategies       []string
	ConversionWorker *worker.ConversionPersistWorker

	StartedAt time.Time
}

// LocalEngineFactory builds the local OCR engine for the configured
// languages.
type LocalEngineFactory func(languages []string) ocr.Engine

// New wires every component from configuration. Only the session backend is
// mandatory: a missing credential store leaves the auth screen reporting the
// failure, and a missing broker disables conversion events.
func New(ctx context.Context, localEngine LocalEngineFactory) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.App.Name, os.Stdout)
	app := &App{
		Config:    cfg,
		Log:       log,
		StartedAt: time.Now(),
	}

	jwtTTL := time.Duration(cfg.Auth.JWTExpireMinute) * time.Minute
	app.MySQL, app.StoreErr = mysqlClient.New(ctx, cfg.Database.DSN, log)
	if app.StoreErr != nil {
		log.Error().Err(app.StoreErr).Msg("credential store unavailable")
		app.Auth = appsvc.NewUnavailableAuthService(app.StoreErr, cfg.Auth.JWTSecret, jwtTTL)
		app.History = appsvc.NewHistoryService(nil)
	} else {
		app.Auth = appsvc.NewAuthService(repository.NewUserRepository(app.MySQL), cfg.Auth.JWTSecret, jwtTTL)
		app.History = appsvc.NewHistoryService(repository.NewConversionRepository(app.MySQL))
	}

	switch cfg.Session.Backend {
	case "redis":
		app.Redis, err = redisClient.New(ctx, cfg.Redis)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Backend = cache.NewRedisBackend(app.Redis)
	case "memory", "":
		app.Backend = cache.NewMemoryBackend()
	default:
		_ = app.Close()
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
	app.Sessions = cache.NewSessionStore(app.Backend, time.Duration(cfg.Session.TTLMinutes)*time.Minute)
	app.Artifacts = cache.NewArtifactStore(app.Backend, time.Duration(cfg.Session.ArtifactTTLMinute)*time.Minute)

	var events appsvc.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		if err := app.startEvents(ctx); err != nil {
			log.Warn().Err(err).Msg("conversion events disabled")
		} else {
			events = rabbitmqClient.NewConversionPublisher(app.MQConn, cfg.RabbitMQ.ConversionQueue)
		}
	}

	pipeline := ocr.NewPipeline(log, buildStrategies(cfg, localEngine)...)
	app.Strategies = pipeline.Strategies()
	app.Converter = appsvc.NewConvertService(
		pipeline,
		document.NewBuilder(cfg.Document.FontPath, log),
		events,
		log,
	)

	log.Info().
		Strs("strategies", app.Strategies).
		Str("session_backend", cfg.Session.Backend).
		Bool("credential_store", app.StoreErr == nil).
		Bool("conversion_events", events != nil).
		Msg("application wired")
	return app, nil
}

func buildStrategies(cfg *config.Config, localEngine LocalEngineFactory) []ocr.Strategy {
	var strategies []ocr.Strategy
	if cfg.VisionEnabled() {
		client := ai.NewOpenAICompatibleClient(time.Duration(cfg.Vision.TimeoutSeconds) * time.Second)
		strategies = append(strategies, ocr.NewVisionStrategy(client, ai.ChatConfig{
			BaseURL: cfg.Vision.BaseURL,
			APIKey:  cfg.Vision.APIKey,
			Model:   cfg.Vision.Model,
		}))
	}
	return append(strategies, ocr.NewLocalStrategy(localEngine(cfg.OCR.Languages)))
}

// startEvents connects to the broker and, when the credential database is
// up, starts the worker that persists conversion events.
func (a *App) startEvents(ctx context.Context) error {
	conn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL, a.Config.App.Name)
	if err != nil {
		return err
	}
	a.MQConn = conn

	if a.MySQL == nil {
		return nil
	}
	w := worker.NewConversionPersistWorker(conn, repository.NewConversionRepository(a.MySQL), a.Config.RabbitMQ.ConversionQueue, a.Log)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start conversion worker failed: %w", err)
	}
	a.ConversionWorker = w
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.ConversionWorker != nil {
		a.ConversionWorker.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		errs = append(errs, a.MQConn.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

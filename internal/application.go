package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/console"
	"github.com/rocketscienceinc/tictactoe-web/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-web/internal/msgcat"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-web/internal/service"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/transport/rest"
	"github.com/rocketscienceinc/tictactoe-web/transport/websocket"
)

// terminalSessionID keys the scores of the terminal player.
const terminalSessionID = "terminal"

type components struct {
	catalog  *msgcat.Catalog
	metrics  *metrics.Metrics
	sessions *usecase.SessionManager
	close    func()
}

// RunApp - runs the HTTP application until a signal arrives or a server fails.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signalContext(log)
	defer cancel()

	app, err := build(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer app.close()

	page, err := rest.NewPage(app.catalog)
	if err != nil {
		return fmt.Errorf("could not build page: %w", err)
	}

	wsServer := websocket.New(logger, app.sessions)
	defer wsServer.Close()

	api := rest.NewHandlers(logger, app.sessions, page)
	router := rest.NewRouter(logger, api, wsServer, app.metrics.Handler())

	go app.sessions.Run(ctx)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpErrCh <- rest.Start(ctx, logger, conf.HTTPPort, router)
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		wsServer.Close()
		return <-httpErrCh
	}
}

// RunConsole - plays one local game in the terminal with the configured score storage.
func RunConsole(logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	ctx, cancel := signalContext(logger.With("component", "console"))
	defer cancel()

	app, err := build(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer app.close()

	session, err := app.sessions.GetOrCreate(ctx, terminalSessionID)
	if err != nil {
		return fmt.Errorf("could not start session: %w", err)
	}

	return console.New(session, in, out).Run(ctx)
}

func signalContext(log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()

	return ctx, cancel
}

func build(ctx context.Context, logger *slog.Logger, conf *config.Config) (*components, error) {
	catalog, err := msgcat.New(conf.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("could not load messages: %w", err)
	}

	factory, closeStore, err := NewRepositoryFactory(ctx, logger, conf)
	if err != nil {
		return nil, err
	}

	appMetrics := metrics.New()
	sessions := usecase.NewSessionManager(
		logger,
		func(sessionID string) service.ScoreService {
			return service.NewScoreService(logger, factory(sessionID))
		},
		catalog,
		appMetrics,
		conf.Game.CelebrationDuration,
		conf.Game.SessionTTL,
	)

	return &components{
		catalog:  catalog,
		metrics:  appMetrics,
		sessions: sessions,
		close: func() {
			sessions.Close()
			closeStore()
		},
	}, nil
}

// NewRepositoryFactory opens the score storage selected by conf.Storage.Driver.
func NewRepositoryFactory(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.Factory, func(), error) {
	log := logger.With("method", "NewRepositoryFactory", "driver", conf.Storage.Driver)

	switch conf.Storage.Driver {
	case config.DriverRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		log.Info("using redis storage", "addr", conf.Redis.GetRedisAddr())

		return repository.NewRedisFactory(redisStorage.Connection, conf.Storage.KeyPrefix), func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}, nil
	case config.DriverSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(ctx, conf.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		log.Info("using sqlite storage", "path", conf.Storage.SQLitePath)

		return repository.NewSQLiteFactory(sqliteStorage.Connection, conf.Storage.KeyPrefix), func() {
			if err := sqliteStorage.Close(); err != nil {
				log.Error("could not close sqlite storage", "error", err)
			}
		}, nil
	case config.DriverMemory:
		log.Info("using in-memory storage, scores are lost on restart")
		return repository.NewMemoryFactory(storage.NewMemoryStorage(), conf.Storage.KeyPrefix), func() {}, nil
	case config.DriverNone:
		log.Info("persistent storage disabled")
		return repository.NewDisabledFactory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", apperror.ErrUnknownDriver, conf.Storage.Driver)
	}
}

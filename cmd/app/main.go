package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"luna/cmd"
	httpin "luna/internal/adapters/in/http"
	mqttin "luna/internal/adapters/in/mqtt"
	"luna/internal/adapters/in/pgnotify"
	"luna/internal/adapters/out/postgres"
	"luna/internal/pkg/logging"
	"luna/internal/pkg/policy"
	"luna/internal/pkg/telemetry"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs := getConfigs()

	logger, err := logging.NewLogger(configs.LogLevel, configs.LogFormat, "luna")
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err = run(configs, logger); err != nil {
		logger.Fatal("engine stopped", zap.Error(err))
	}
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	config, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return config
}

func run(configs cmd.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry.Register()

	holder, err := policy.NewHolder(configs.Policy)
	if err != nil {
		return err
	}
	var watcher *policy.Watcher
	if configs.PolicyFile != "" {
		watcher = policy.NewWatcher(configs.PolicyFile, configs.Policy, holder, logger)
		if err = watcher.Reload(); err != nil {
			return fmt.Errorf("load policy file: %w", err)
		}
	}

	storage, err := cmd.OpenStorage(configs, logger)
	if err != nil {
		return err
	}
	defer func() { _ = storage.Close() }()

	notifiers, err := cmd.OpenNotifiers(ctx, configs, logger)
	if err != nil {
		return err
	}
	defer func() { _ = notifiers.Close() }()

	app, err := cmd.NewCompositionRoot(configs, storage.UoWFactory, notifiers.Notifier, holder, logger)
	if err != nil {
		return err
	}

	server, err := app.CreateHTTPServer()
	if err != nil {
		return err
	}
	e, err := httpin.NewRouter(server, logger)
	if err != nil {
		return err
	}

	var listener *pgnotify.Listener
	if storage.DB != nil {
		listener, err = pgnotify.NewListener(configs.DSN(), postgres.DefaultDispatchChannel, app.DispatchTrigger(), logger)
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)
		logger.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if listener != nil {
		g.Go(func() error { return listener.Run(ctx) })
	}

	if watcher != nil {
		g.Go(func() error { return watcher.Run(ctx) })
	}

	if notifiers.MQTT != nil {
		subscriber := mqttin.NewHeartbeatSubscriber(app.CreateReportHeartbeatCommandHandler(), logger)
		if err = subscriber.Start(notifiers.MQTT); err != nil {
			return fmt.Errorf("subscribe to heartbeats: %w", err)
		}
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	// tasks left waiting by a previous run
	app.DispatchTrigger().Trigger()

	return g.Wait()
}

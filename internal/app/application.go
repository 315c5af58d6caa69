package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"weatherbot.app/internal/adapters/api"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/core/notification"
	"weatherbot.app/internal/core/weather"
	"weatherbot.app/internal/i18n"
	"weatherbot.app/internal/ports"
	"weatherbot.app/internal/scheduler"
)

type Application struct {
	config *config.Config
	logger ports.Logger

	// Use Cases
	weatherUseCase      *weather.UseCase
	notificationUseCase *notification.UseCase

	// Background work
	scheduler *scheduler.Scheduler
	watchdog  *scheduler.Watchdog
	done      chan struct{}

	// Adapters
	httpAdapter *api.HTTPServerAdapter

	// Infrastructure
	deps  *DependencyContainer
	ports *ports.ApplicationPorts
}

// NewApplication wires every component from cfg
func NewApplication(cfg *config.Config, logger ports.Logger) (*Application, error) {
	LogConfig(logger, cfg)

	deps, err := NewDependencyContainer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	app, err := NewApplicationWithDependencies(cfg, deps, nil)
	if err != nil {
		_ = deps.Cleanup()
		return nil, err
	}
	return app, nil
}

// NewApplicationWithDependencies builds the application around an existing
// container. exit is called by the watchdog on a stall; nil means os.Exit.
func NewApplicationWithDependencies(cfg *config.Config, deps *DependencyContainer, exit func(int)) (*Application, error) {
	app := &Application{
		config: cfg,
		logger: deps.logger,
		deps:   deps,
		ports:  deps.ApplicationPorts(),
		done:   make(chan struct{}),
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeScheduler(exit); err != nil {
		return nil, fmt.Errorf("initialize scheduler: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeUseCases() error {
	weatherUseCase, err := weather.NewUseCase(weather.UseCaseDependencies{
		Source:    a.ports.WeatherSource,
		Snapshots: a.ports.SnapshotRepository,
		Cache:     a.ports.ForecastCache,
		Heartbeat: a.deps.Heartbeat(),
		Config:    a.ports.ConfigProvider,
		Logger:    a.ports.Logger,
		Metrics:   a.ports.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create weather use case: %w", err)
	}
	a.weatherUseCase = weatherUseCase

	catalog, err := i18n.NewCatalog()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	notificationUseCase, err := notification.NewUseCase(notification.UseCaseDependencies{
		Users:     a.ports.UserRepository,
		Snapshots: a.ports.SnapshotRepository,
		Messenger: a.ports.Messenger,
		Forecasts: weatherUseCase,
		Composer:  notification.NewComposer(catalog),
		Config:    a.ports.ConfigProvider,
		Logger:    a.ports.Logger,
		Metrics:   a.ports.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create notification use case: %w", err)
	}
	a.notificationUseCase = notificationUseCase
	return nil
}

func (a *Application) initializeScheduler(exit func(int)) error {
	s, err := scheduler.New(scheduler.Dependencies{
		Users:      a.ports.UserRepository,
		Detector:   a.weatherUseCase,
		Dispatcher: a.notificationUseCase,
		Heartbeat:  a.deps.Heartbeat(),
		Config:     a.ports.ConfigProvider,
		Logger:     a.ports.Logger,
		Metrics:    a.ports.Metrics,
	})
	if err != nil {
		return err
	}
	a.scheduler = s

	watchdog, err := scheduler.NewWatchdog(scheduler.WatchdogDependencies{
		Heartbeat: a.deps.Heartbeat(),
		Config:    a.ports.ConfigProvider,
		Logger:    a.ports.Logger,
		Exit:      exit,
	})
	if err != nil {
		return err
	}
	a.watchdog = watchdog
	return nil
}

func (a *Application) initializeAdapters() error {
	if a.config.Mode.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpAdapter, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Config: api.ServerConfig{Port: a.config.Server.Port},
		Health: a.deps.HealthChecker(),
		Status: a.scheduler,
		Logger: a.ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}
	a.httpAdapter = httpAdapter
	return nil
}

// Start runs the scheduler in the background and serves HTTP until Shutdown.
// Cancelling ctx stops the scheduler.
func (a *Application) Start(ctx context.Context) error {
	a.logger.Info("Starting application", ports.F("test_mode", a.config.Mode.TestMode))

	if err := a.watchdog.Start(); err != nil {
		return fmt.Errorf("start watchdog: %w", err)
	}

	go func() {
		defer close(a.done)
		if err := a.scheduler.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			a.logger.Error("Scheduler exited", ports.F("error", err))
		}
	}()

	return a.httpAdapter.Start()
}

// Shutdown waits for the in-flight cycle, then releases resources. The
// caller cancels the context passed to Start first.
func (a *Application) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	a.watchdog.Stop()

	select {
	case <-a.done:
	case <-ctx.Done():
		a.logger.Warn("Scheduler did not stop before the shutdown deadline")
	}

	var shutdownErr error
	if err := a.httpAdapter.Shutdown(ctx); err != nil {
		a.logger.Error("Error shutting down HTTP server", ports.F("error", err))
		shutdownErr = fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if err := a.deps.Cleanup(); err != nil {
		a.logger.Warn("Error releasing resources", ports.F("error", err))
	}

	a.logger.Info("Application shutdown complete")
	return shutdownErr
}

// RunCycle runs one cycle synchronously
func (a *Application) RunCycle(ctx context.Context, now time.Time) *scheduler.CycleSummary {
	return a.scheduler.RunCycle(ctx, now)
}

func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.httpAdapter.GetRouter()
}

func (a *Application) Ports() *ports.ApplicationPorts {
	return a.ports
}

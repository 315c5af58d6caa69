package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"weatherbot.app/internal/adapters/database"
	"weatherbot.app/internal/adapters/external"
	"weatherbot.app/internal/adapters/infrastructure"
	"weatherbot.app/internal/adapters/testmode"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
	"weatherbot.app/internal/scheduler"
)

type DependencyContainer struct {
	config    *config.Config
	logger    ports.Logger
	db        *gorm.DB
	cache     *infrastructure.InstrumentedCache
	heartbeat *scheduler.Heartbeat
	ports     *ports.ApplicationPorts
	health    map[string]ports.HealthChecker
}

func NewDependencyContainer(cfg *config.Config, logger ports.Logger) (*DependencyContainer, error) {
	container := &DependencyContainer{
		config:    cfg,
		logger:    logger,
		heartbeat: scheduler.NewHeartbeat(),
		health:    make(map[string]ports.HealthChecker),
	}
	configProvider := infrastructure.NewConfigProviderAdapter(cfg)

	if err := container.initializeDatabase(configProvider.GetDatabaseConfig()); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	if err := container.initializePorts(configProvider); err != nil {
		_ = container.Cleanup()
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

func (c *DependencyContainer) initializeDatabase(cfg ports.DatabaseConfig) error {
	c.logger.Info("Initializing database connection", ports.F("driver", cfg.Driver))

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return err
	}

	c.db = db
	c.health["database"] = infrastructure.NewDatabaseHealthChecker(db)
	c.logger.Info("Database connection established successfully")
	return nil
}

func (c *DependencyContainer) initializePorts(configProvider *infrastructure.ConfigProviderAdapter) error {
	mode := configProvider.GetModeConfig()
	weatherCfg := configProvider.GetWeatherConfig()

	var users ports.UserRepository = database.NewUserRepositoryAdapter(c.db, c.logger)
	if mode.TestMode {
		users = testmode.NewSyntheticUsers(mode.TestChatID, mode.TestCity, mode.TestTimezone, weatherCfg.DefaultLanguage)
		c.logger.Warn("Test mode enabled, using a synthetic user",
			ports.F("chat_id", mode.TestChatID), ports.F("city", mode.TestCity))
	}

	source := c.createWeatherSource(mode.TestMode, weatherCfg)

	cacheCfg := configProvider.GetCacheConfig()
	cache, err := external.NewCacheProviderFactory().CreateCacheProvider(&cacheCfg)
	if err != nil {
		return fmt.Errorf("create cache provider: %w", err)
	}
	if redis, ok := cache.(*external.RedisCacheProviderAdapter); ok {
		c.health["cache"] = infrastructure.NewPingHealthChecker("cache", redis)
	}
	c.cache = infrastructure.NewInstrumentedCache(cache, cacheCfg.Type)
	c.logger.Info("Cache provider initialized", ports.F("type", cacheCfg.Type))

	messenger, err := c.createMessenger(mode.TestMode, configProvider.GetTelegramConfig(), weatherCfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("create messenger: %w", err)
	}

	c.health["scheduler"] = infrastructure.NewSchedulerHealthChecker(
		c.heartbeat, configProvider.GetSchedulerConfig().StallThreshold, nil)

	c.ports = &ports.ApplicationPorts{
		WeatherSource:      source,
		ForecastCache:      external.NewForecastCacheAdapter(c.cache),
		SnapshotRepository: database.NewSnapshotRepositoryAdapter(c.db),
		UserRepository:     users,
		Messenger:          messenger,
		CacheMetrics:       c.cache,
		ConfigProvider:     configProvider,
		Logger:             c.logger,
		Metrics:            infrastructure.NewPrometheusMetricsCollector(),
		Database:           c.db,
	}
	return nil
}

func (c *DependencyContainer) createWeatherSource(testMode bool, cfg ports.WeatherConfig) ports.WeatherSource {
	if testMode {
		c.health["weather_source"] = infrastructure.NewWeatherSourceHealthChecker(nil)
		return testmode.NewRandomWeatherSource(uint64(time.Now().UnixNano()), nil)
	}

	owm := external.NewOpenWeatherMapSource(external.OpenWeatherMapSourceParams{
		APIKey:  c.config.Weather.OpenWeatherMapKey,
		BaseURL: c.config.Weather.OpenWeatherMapBaseURL,
		Timeout: cfg.RequestTimeout,
		Logger:  c.logger,
	})
	c.health["weather_source"] = infrastructure.NewWeatherSourceHealthChecker(owm)

	if !c.config.Weather.EnableLogging {
		return owm
	}

	audit := c.logger
	if path := c.config.Weather.LogFilePath; path != "" {
		fileLogger, err := infrastructure.NewFileLoggerAdapter(path)
		if err != nil {
			c.logger.Warn("Failed to create weather source log file, logging to stdout only", ports.F("error", err))
		} else {
			audit = infrastructure.MultiLogger{c.logger, fileLogger}
			c.logger.Info("Weather source file logging enabled", ports.F("path", path))
		}
	}
	return external.NewWeatherSourceLoggingDecorator(owm, audit)
}

// createMessenger falls back to a logging messenger only in test mode without a token
func (c *DependencyContainer) createMessenger(testMode bool, cfg ports.TelegramConfig, timeout time.Duration) (ports.Messenger, error) {
	if testMode && cfg.BotToken == "" {
		messenger := testmode.NewLogMessenger(c.logger)
		c.health["messenger"] = infrastructure.NewPingHealthChecker("messenger", messenger)
		return messenger, nil
	}

	messenger, err := external.NewTelegramMessenger(external.TelegramMessengerParams{
		Token:       cfg.BotToken,
		APIEndpoint: cfg.APIEndpoint,
		Timeout:     timeout,
		Logger:      c.logger,
	})
	if err != nil {
		return nil, err
	}
	c.health["messenger"] = infrastructure.NewPingHealthChecker("messenger", messenger)
	return messenger, nil
}

func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

func (c *DependencyContainer) Database() *gorm.DB {
	return c.db
}

func (c *DependencyContainer) Heartbeat() *scheduler.Heartbeat {
	return c.heartbeat
}

// HealthChecker aggregates the component checks registered during wiring
func (c *DependencyContainer) HealthChecker() *infrastructure.SystemHealthChecker {
	return infrastructure.NewSystemHealthChecker(c.health)
}

// Cleanup releases the cache and database connections
func (c *DependencyContainer) Cleanup() error {
	var firstErr error
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			firstErr = err
		}
	}
	if c.db != nil {
		if err := database.Close(c.db); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

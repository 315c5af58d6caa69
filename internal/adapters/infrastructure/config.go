package infrastructure

import (
	"time"

	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
)

// ConfigProviderAdapter implements the ConfigProvider port
type ConfigProviderAdapter struct {
	config *config.Config
}

func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		config: cfg,
	}
}

func (c *ConfigProviderAdapter) GetWeatherConfig() ports.WeatherConfig {
	return ports.WeatherConfig{
		DefaultLanguage:  c.config.Weather.DefaultLanguage,
		RequestTimeout:   time.Duration(c.config.Weather.RequestTimeoutSeconds) * time.Second,
		ForecastCacheTTL: time.Duration(c.config.Weather.ForecastCacheTTL) * time.Minute,
	}
}

func (c *ConfigProviderAdapter) GetServerConfig() ports.ServerConfig {
	return ports.ServerConfig{
		Port: c.config.Server.Port,
	}
}

func (c *ConfigProviderAdapter) GetDatabaseConfig() ports.DatabaseConfig {
	return ports.DatabaseConfig{
		Driver:     string(c.config.Database.Driver),
		Host:       c.config.Database.Host,
		Port:       c.config.Database.Port,
		User:       c.config.Database.User,
		Password:   c.config.Database.Password,
		Name:       c.config.Database.Name,
		SSLMode:    c.config.Database.SSLMode,
		SQLitePath: c.config.Database.SQLitePath,
	}
}

func (c *ConfigProviderAdapter) GetTelegramConfig() ports.TelegramConfig {
	return ports.TelegramConfig{
		BotToken:    c.config.Telegram.BotToken,
		APIEndpoint: c.config.Telegram.APIEndpoint,
	}
}

func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	return ports.CacheConfig{
		Type: c.config.Cache.Type.String(),
		Redis: ports.RedisConfig{
			Addr:         c.config.Cache.Redis.Addr,
			Password:     c.config.Cache.Redis.Password,
			DB:           c.config.Cache.Redis.DB,
			DialTimeout:  c.config.Cache.Redis.DialTimeout,
			ReadTimeout:  c.config.Cache.Redis.ReadTimeout,
			WriteTimeout: c.config.Cache.Redis.WriteTimeout,
		},
	}
}

func (c *ConfigProviderAdapter) GetSchedulerConfig() ports.SchedulerConfig {
	s := c.config.Scheduler
	return ports.SchedulerConfig{
		CycleSpec:        s.CycleSpec,
		RunOnStart:       s.RunOnStart,
		FetchPasses:      s.FetchPasses,
		Cooldown:         time.Duration(s.CooldownMinutes) * time.Minute,
		DigestHour:       s.DigestHour,
		DigestWindow:     time.Duration(s.DigestWindowMinutes) * time.Minute,
		WatchdogInterval: time.Duration(s.WatchdogIntervalMinutes) * time.Minute,
		StallThreshold:   time.Duration(s.WatchdogStallMinutes) * time.Minute,
	}
}

func (c *ConfigProviderAdapter) GetModeConfig() ports.ModeConfig {
	return ports.ModeConfig{
		TestMode:     c.config.Mode.TestMode,
		TestChatID:   c.config.Mode.TestChatID,
		TestCity:     c.config.Mode.TestCity,
		TestTimezone: c.config.Mode.TestTimezone,
	}
}

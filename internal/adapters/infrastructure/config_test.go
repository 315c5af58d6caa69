package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
)

var _ ports.ConfigProvider = (*ConfigProviderAdapter)(nil)

func TestConfigProviderAdapter(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: 9090},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: "bot.db"},
		Weather: config.WeatherConfig{
			DefaultLanguage:       "ru",
			RequestTimeoutSeconds: 10,
			ForecastCacheTTL:      30,
		},
		Telegram: config.TelegramConfig{BotToken: "token", APIEndpoint: "https://api.telegram.org/bot%s/%s"},
		Cache:    config.CacheConfig{Type: config.CacheTypeRedis, Redis: config.RedisConfig{Addr: "redis:6379", DB: 2}},
		Scheduler: config.SchedulerConfig{
			CycleSpec:               "*/30 * * * *",
			RunOnStart:              true,
			FetchPasses:             3,
			CooldownMinutes:         180,
			DigestHour:              6,
			DigestWindowMinutes:     30,
			WatchdogIntervalMinutes: 60,
			WatchdogStallMinutes:    50,
		},
		Mode: config.ModeConfig{TestMode: true, TestChatID: 42, TestCity: "Москва", TestTimezone: "Europe/Moscow"},
	}

	provider := NewConfigProviderAdapter(cfg)

	assert.Equal(t, 9090, provider.GetServerConfig().Port)
	assert.Equal(t, "sqlite", provider.GetDatabaseConfig().Driver)
	assert.Equal(t, "bot.db", provider.GetDatabaseConfig().SQLitePath)
	assert.Equal(t, 10*time.Second, provider.GetWeatherConfig().RequestTimeout)
	assert.Equal(t, 30*time.Minute, provider.GetWeatherConfig().ForecastCacheTTL)
	assert.Equal(t, "token", provider.GetTelegramConfig().BotToken)
	assert.Equal(t, "redis", provider.GetCacheConfig().Type)
	assert.Equal(t, 2, provider.GetCacheConfig().Redis.DB)

	scheduler := provider.GetSchedulerConfig()
	assert.Equal(t, 3*time.Hour, scheduler.Cooldown)
	assert.Equal(t, 30*time.Minute, scheduler.DigestWindow)
	assert.Equal(t, time.Hour, scheduler.WatchdogInterval)
	assert.Equal(t, 50*time.Minute, scheduler.StallThreshold)
	assert.True(t, scheduler.RunOnStart)

	mode := provider.GetModeConfig()
	assert.True(t, mode.TestMode)
	assert.Equal(t, int64(42), mode.TestChatID)
}

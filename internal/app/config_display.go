package app

import (
	"strings"

	"weatherbot.app/internal/config"
	"weatherbot.app/internal/ports"
)

// LogConfig writes the effective configuration with secrets masked
func LogConfig(logger ports.Logger, cfg *config.Config) {
	logger.Info("Application configuration",
		ports.F("server_port", cfg.Server.Port),
		ports.F("db_driver", string(cfg.Database.Driver)),
		ports.F("db_host", cfg.Database.Host),
		ports.F("db_name", cfg.Database.Name),
		ports.F("db_password", maskString(cfg.Database.Password)),
		ports.F("weather_base_url", cfg.Weather.OpenWeatherMapBaseURL),
		ports.F("weather_api_key", maskString(cfg.Weather.OpenWeatherMapKey)),
		ports.F("weather_language", cfg.Weather.DefaultLanguage),
		ports.F("telegram_token", maskString(cfg.Telegram.BotToken)),
		ports.F("cache_type", cfg.Cache.Type.String()),
		ports.F("cycle_spec", cfg.Scheduler.CycleSpec),
		ports.F("fetch_passes", cfg.Scheduler.FetchPasses),
		ports.F("cooldown_minutes", cfg.Scheduler.CooldownMinutes),
		ports.F("digest_hour", cfg.Scheduler.DigestHour),
		ports.F("stall_minutes", cfg.Scheduler.WatchdogStallMinutes),
		ports.F("test_mode", cfg.Mode.TestMode),
	)
}

// maskString keeps the first quarter of a secret visible
func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	visible := len(s) / 4
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}

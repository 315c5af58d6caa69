package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"weatherbot.app/pkg/errors"
	"weatherbot.app/pkg/validation"
)

const (
	maxRedisDB         = 15
	maxCacheTTLMinutes = 1440
	maxPortNumber      = 65535
	maxFetchPasses     = 10
	minutesPerHour     = 60
	hoursPerDay        = 24
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Weather   WeatherConfig   `split_words:"true"`
	Telegram  TelegramConfig  `split_words:"true"`
	Scheduler SchedulerConfig `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Mode      ModeConfig      `split_words:"true"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseDriver selects the gorm dialector
type DatabaseDriver string

const (
	DriverPostgres DatabaseDriver = "postgres"
	DriverSQLite   DatabaseDriver = "sqlite"
)

type DatabaseConfig struct {
	Driver     DatabaseDriver `envconfig:"DB_DRIVER" default:"postgres"`
	Host       string         `envconfig:"DB_HOST" default:"localhost"`
	Port       int            `envconfig:"DB_PORT" default:"5432"`
	User       string         `envconfig:"DB_USER" default:"postgres"`
	Password   string         `envconfig:"DB_PASSWORD" default:"postgres"`
	Name       string         `envconfig:"DB_NAME" default:"weatherbot"`
	SSLMode    string         `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath string         `envconfig:"DB_SQLITE_PATH" default:"weatherbot.db"`
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type WeatherConfig struct {
	OpenWeatherMapKey     string `envconfig:"OPENWEATHERMAP_API_KEY"`
	OpenWeatherMapBaseURL string `envconfig:"OPENWEATHERMAP_API_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	RequestTimeoutSeconds int    `envconfig:"WEATHER_REQUEST_TIMEOUT_SECONDS" default:"10"`
	DefaultLanguage       string `envconfig:"WEATHER_DEFAULT_LANGUAGE" default:"ru"`
	EnableLogging         bool   `envconfig:"WEATHER_ENABLE_LOGGING" default:"true"`
	LogFilePath           string `envconfig:"WEATHER_LOG_FILE_PATH" default:"logs/weather_source.log"`
	ForecastCacheTTL      int    `envconfig:"WEATHER_FORECAST_CACHE_TTL_MINUTES" default:"30"`
}

type TelegramConfig struct {
	BotToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	APIEndpoint string `envconfig:"TELEGRAM_API_ENDPOINT" default:"https://api.telegram.org/bot%s/%s"`
}

// CacheType represents the type of cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeMemory || c == CacheTypeRedis
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch s {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type  CacheType   `envconfig:"CACHE_TYPE" default:"memory"`
	Redis RedisConfig `split_words:"true"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

type SchedulerConfig struct {
	CycleSpec               string `envconfig:"SCHEDULER_CYCLE_SPEC" default:"*/30 * * * *"`
	RunOnStart              bool   `envconfig:"SCHEDULER_RUN_ON_START" default:"true"`
	FetchPasses             int    `envconfig:"SCHEDULER_FETCH_PASSES" default:"3"`
	CooldownMinutes         int    `envconfig:"SCHEDULER_COOLDOWN_MINUTES" default:"180"`
	DigestHour              int    `envconfig:"SCHEDULER_DIGEST_HOUR" default:"6"`
	DigestWindowMinutes     int    `envconfig:"SCHEDULER_DIGEST_WINDOW_MINUTES" default:"30"`
	WatchdogIntervalMinutes int    `envconfig:"WATCHDOG_INTERVAL_MINUTES" default:"60"`
	WatchdogStallMinutes    int    `envconfig:"WATCHDOG_STALL_MINUTES" default:"50"`
}

type ModeConfig struct {
	TestMode     bool   `envconfig:"TEST_MODE" default:"false"`
	TestChatID   int64  `envconfig:"TEST_MODE_CHAT_ID" default:"1"`
	TestCity     string `envconfig:"TEST_MODE_CITY" default:"Москва"`
	TestTimezone string `envconfig:"TEST_MODE_TIMEZONE" default:"Europe/Moscow"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(c.Mode.TestMode); err != nil {
		return err
	}
	if err := c.Telegram.Validate(c.Mode.TestMode); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Mode.Validate(); err != nil {
		return err
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if !validation.IsNotEmpty(d.SQLitePath) {
			return errors.NewConfigurationError("DB_SQLITE_PATH cannot be empty when DB_DRIVER is sqlite", nil)
		}
		return nil
	case DriverPostgres:
	default:
		return errors.NewConfigurationError("DB_DRIVER must be one of: postgres, sqlite", nil)
	}

	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (w *WeatherConfig) Validate(testMode bool) error {
	if !testMode && w.OpenWeatherMapKey == "" {
		return errors.NewConfigurationError("OPENWEATHERMAP_API_KEY must be configured", nil)
	}
	if !strings.HasPrefix(w.OpenWeatherMapBaseURL, "http://") && !strings.HasPrefix(w.OpenWeatherMapBaseURL, "https://") {
		return errors.NewConfigurationError("OPENWEATHERMAP_API_BASE_URL must start with http:// or https://", nil)
	}
	if w.RequestTimeoutSeconds < 1 {
		return errors.NewConfigurationError("WEATHER_REQUEST_TIMEOUT_SECONDS must be at least 1 second", nil)
	}
	if !validation.IsNotEmpty(w.DefaultLanguage) {
		return errors.NewConfigurationError("WEATHER_DEFAULT_LANGUAGE cannot be empty", nil)
	}
	if w.ForecastCacheTTL < 1 || w.ForecastCacheTTL > maxCacheTTLMinutes {
		return errors.NewConfigurationError("WEATHER_FORECAST_CACHE_TTL_MINUTES must be between 1 and 1440 minutes", nil)
	}
	return nil
}

func (t *TelegramConfig) Validate(testMode bool) error {
	if !testMode && t.BotToken == "" {
		return errors.NewConfigurationError("TELEGRAM_BOT_TOKEN must be configured", nil)
	}
	if strings.Count(t.APIEndpoint, "%s") != 2 {
		return errors.NewConfigurationError("TELEGRAM_API_ENDPOINT must contain two %s placeholders", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis", nil)
	}

	if c.Type == CacheTypeRedis {
		return c.Redis.Validate()
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (s *SchedulerConfig) Validate() error {
	if _, err := cron.ParseStandard(s.CycleSpec); err != nil {
		return errors.NewConfigurationError("SCHEDULER_CYCLE_SPEC is not a valid cron expression", err)
	}
	if s.FetchPasses < 1 || s.FetchPasses > maxFetchPasses {
		return errors.NewConfigurationError("SCHEDULER_FETCH_PASSES must be between 1 and 10", nil)
	}
	if s.CooldownMinutes < 0 {
		return errors.NewConfigurationError("SCHEDULER_COOLDOWN_MINUTES cannot be negative", nil)
	}
	if s.DigestHour < 0 || s.DigestHour >= hoursPerDay {
		return errors.NewConfigurationError("SCHEDULER_DIGEST_HOUR must be between 0 and 23", nil)
	}
	if s.DigestWindowMinutes < 1 || s.DigestWindowMinutes > minutesPerHour {
		return errors.NewConfigurationError("SCHEDULER_DIGEST_WINDOW_MINUTES must be between 1 and 60", nil)
	}
	if s.WatchdogIntervalMinutes < 1 {
		return errors.NewConfigurationError("WATCHDOG_INTERVAL_MINUTES must be at least 1 minute", nil)
	}
	if s.WatchdogStallMinutes < 1 {
		return errors.NewConfigurationError("WATCHDOG_STALL_MINUTES must be at least 1 minute", nil)
	}
	return nil
}

func (m *ModeConfig) Validate() error {
	switch strings.ToLower(m.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewConfigurationError("LOG_LEVEL must be one of: debug, info, warn, error", nil)
	}
	if !m.TestMode {
		return nil
	}
	if !validation.IsNotEmpty(m.TestCity) {
		return errors.NewConfigurationError("TEST_MODE_CITY cannot be empty in test mode", nil)
	}
	if !validation.IsValidTimezone(m.TestTimezone) {
		return errors.NewConfigurationError("TEST_MODE_TIMEZONE must be a valid IANA time zone", nil)
	}
	return nil
}

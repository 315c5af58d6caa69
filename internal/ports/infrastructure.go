package ports

import (
	"context"
	"time"
)

// WeatherConfig represents weather source configuration
type WeatherConfig struct {
	DefaultLanguage  string
	RequestTimeout   time.Duration
	ForecastCacheTTL time.Duration
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// TelegramConfig represents messaging transport configuration
type TelegramConfig struct {
	BotToken    string
	APIEndpoint string
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Type  string
	Redis RedisConfig
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// SchedulerConfig represents cycle, dispatch and watchdog timing
type SchedulerConfig struct {
	CycleSpec        string
	RunOnStart       bool
	FetchPasses      int
	Cooldown         time.Duration
	DigestHour       int
	DigestWindow     time.Duration
	WatchdogInterval time.Duration
	StallThreshold   time.Duration
}

// ModeConfig represents runtime mode switches
type ModeConfig struct {
	TestMode     bool
	TestChatID   int64
	TestCity     string
	TestTimezone string
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetWeatherConfig() WeatherConfig
	GetServerConfig() ServerConfig
	GetDatabaseConfig() DatabaseConfig
	GetTelegramConfig() TelegramConfig
	GetCacheConfig() CacheConfig
	GetSchedulerConfig() SchedulerConfig
	GetModeConfig() ModeConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// MetricsCollector defines the contract for metrics collection
type MetricsCollector interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordWeatherFetch(ctx context.Context, source string, success bool)
	RecordCycle(ctx context.Context, duration time.Duration, failedCities int)
	RecordNotification(ctx context.Context, kind, outcome string)
}

// Heartbeat is written once per completed weather fetch
type Heartbeat interface {
	Beat(at time.Time)
}

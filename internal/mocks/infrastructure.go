package mocks

import (
	"context"
	"sync"
	"time"

	"weatherbot.app/internal/ports"
)

// LogEntry is one captured log call
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Logger records log calls for assertions
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Debug(msg string, fields ...ports.Field) { l.record("debug", msg, fields) }
func (l *Logger) Info(msg string, fields ...ports.Field)  { l.record("info", msg, fields) }
func (l *Logger) Warn(msg string, fields ...ports.Field)  { l.record("warn", msg, fields) }
func (l *Logger) Error(msg string, fields ...ports.Field) { l.record("error", msg, fields) }

func (l *Logger) record(level, msg string, fields []ports.Field) {
	entry := LogEntry{Level: level, Message: msg, Fields: make(map[string]interface{}, len(fields))}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of everything logged so far
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Has reports whether a message was logged at level
func (l *Logger) Has(level, msg string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// Metrics counts collector calls
type Metrics struct {
	mu            sync.Mutex
	CacheHits     int
	CacheMisses   int
	Fetches       map[bool]int
	Cycles        int
	FailedCities  int
	Notifications map[string]int
}

func NewMetrics() *Metrics {
	return &Metrics{Fetches: map[bool]int{}, Notifications: map[string]int{}}
}

func (m *Metrics) RecordCacheHit(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) RecordWeatherFetch(ctx context.Context, source string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches[success]++
}

func (m *Metrics) RecordCycle(ctx context.Context, duration time.Duration, failedCities int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles++
	m.FailedCities += failedCities
}

func (m *Metrics) RecordNotification(ctx context.Context, kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications[kind+"/"+outcome]++
}

// Notification returns the count recorded for kind and outcome
func (m *Metrics) Notification(kind, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Notifications[kind+"/"+outcome]
}

// Heartbeat records every beat
type Heartbeat struct {
	mu    sync.Mutex
	Beats []time.Time
}

func (h *Heartbeat) Beat(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Beats = append(h.Beats, at)
}

func (h *Heartbeat) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Beats)
}

// ConfigProvider serves fixed configuration sections
type ConfigProvider struct {
	Weather   ports.WeatherConfig
	Server    ports.ServerConfig
	Database  ports.DatabaseConfig
	Telegram  ports.TelegramConfig
	Cache     ports.CacheConfig
	Scheduler ports.SchedulerConfig
	Mode      ports.ModeConfig
}

// NewConfigProvider returns the production defaults
func NewConfigProvider() *ConfigProvider {
	return &ConfigProvider{
		Weather: ports.WeatherConfig{
			DefaultLanguage:  "ru",
			RequestTimeout:   10 * time.Second,
			ForecastCacheTTL: 30 * time.Minute,
		},
		Server: ports.ServerConfig{Port: 8080},
		Cache:  ports.CacheConfig{Type: "memory"},
		Scheduler: ports.SchedulerConfig{
			CycleSpec:        "*/30 * * * *",
			RunOnStart:       true,
			FetchPasses:      3,
			Cooldown:         3 * time.Hour,
			DigestHour:       6,
			DigestWindow:     30 * time.Minute,
			WatchdogInterval: time.Hour,
			StallThreshold:   50 * time.Minute,
		},
	}
}

func (c *ConfigProvider) GetWeatherConfig() ports.WeatherConfig     { return c.Weather }
func (c *ConfigProvider) GetServerConfig() ports.ServerConfig       { return c.Server }
func (c *ConfigProvider) GetDatabaseConfig() ports.DatabaseConfig   { return c.Database }
func (c *ConfigProvider) GetTelegramConfig() ports.TelegramConfig   { return c.Telegram }
func (c *ConfigProvider) GetCacheConfig() ports.CacheConfig         { return c.Cache }
func (c *ConfigProvider) GetSchedulerConfig() ports.SchedulerConfig { return c.Scheduler }
func (c *ConfigProvider) GetModeConfig() ports.ModeConfig           { return c.Mode }

package infrastructure

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusCollectors struct {
	cacheRequests *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	failedCities  prometheus.Gauge
	lastCycle     prometheus.Gauge
	notifications *prometheus.CounterVec
}

var (
	collectorsOnce sync.Once
	collectors     *prometheusCollectors
)

// registered once per process; promauto panics on duplicate registration
func getCollectors() *prometheusCollectors {
	collectorsOnce.Do(func() {
		collectors = &prometheusCollectors{
			cacheRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherbot_forecast_cache_requests_total",
					Help: "Forecast cache lookups by result",
				},
				[]string{"result"},
			),
			fetches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherbot_weather_fetches_total",
					Help: "Weather source calls by source and outcome",
				},
				[]string{"source", "success"},
			),
			cycles: promauto.NewCounter(prometheus.CounterOpts{
				Name: "weatherbot_cycles_total",
				Help: "Completed scheduler cycles",
			}),
			cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "weatherbot_cycle_duration_seconds",
				Help:    "Scheduler cycle duration in seconds",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
			}),
			failedCities: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "weatherbot_cycle_failed_cities",
				Help: "Cities that failed every fetch pass in the last cycle",
			}),
			lastCycle: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "weatherbot_last_cycle_timestamp_seconds",
				Help: "Unix time the last cycle completed",
			}),
			notifications: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherbot_notifications_total",
					Help: "Chat messages by kind and outcome",
				},
				[]string{"kind", "outcome"},
			),
		}
	})
	return collectors
}

// PrometheusMetricsCollector implements the MetricsCollector port
type PrometheusMetricsCollector struct {
	c   *prometheusCollectors
	now func() time.Time
}

func NewPrometheusMetricsCollector() *PrometheusMetricsCollector {
	return &PrometheusMetricsCollector{c: getCollectors(), now: time.Now}
}

func (m *PrometheusMetricsCollector) RecordCacheHit(ctx context.Context) {
	m.c.cacheRequests.WithLabelValues("hit").Inc()
}

func (m *PrometheusMetricsCollector) RecordCacheMiss(ctx context.Context) {
	m.c.cacheRequests.WithLabelValues("miss").Inc()
}

func (m *PrometheusMetricsCollector) RecordWeatherFetch(ctx context.Context, source string, success bool) {
	m.c.fetches.WithLabelValues(source, strconv.FormatBool(success)).Inc()
}

func (m *PrometheusMetricsCollector) RecordCycle(ctx context.Context, duration time.Duration, failedCities int) {
	m.c.cycles.Inc()
	m.c.cycleDuration.Observe(duration.Seconds())
	m.c.failedCities.Set(float64(failedCities))
	m.c.lastCycle.Set(float64(m.now().Unix()))
}

func (m *PrometheusMetricsCollector) RecordNotification(ctx context.Context, kind, outcome string) {
	m.c.notifications.WithLabelValues(kind, outcome).Inc()
}

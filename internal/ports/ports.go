package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Weather
	WeatherSource WeatherSource
	ForecastCache ForecastCache

	// Storage
	SnapshotRepository SnapshotRepository
	UserRepository     UserRepository

	// Communication
	Messenger Messenger

	// Cache
	CacheMetrics CacheMetrics

	// Infrastructure
	ConfigProvider ConfigProvider
	Logger         Logger
	Metrics        MetricsCollector
	Database       interface{}
}

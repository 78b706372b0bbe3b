package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string

	ServiceAccountJSON string
	ServiceAccountPath string
	StorageBucket      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string

	NotificationWorkers   int
	NotificationQueueSize int

	RatingRefreshInterval      time.Duration
	ReservationRateLimitPerMin int
	MetricsEnabled             bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),

		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       int(getEnvAsInt64("REDIS_DB", 0)),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		NotificationWorkers:   int(getEnvAsInt64("NOTIFICATION_WORKERS", 4)),
		NotificationQueueSize: int(getEnvAsInt64("NOTIFICATION_QUEUE_SIZE", 256)),

		RatingRefreshInterval:      time.Duration(getEnvAsInt64("RATING_REFRESH_INTERVAL_SECONDS", 300)) * time.Second,
		ReservationRateLimitPerMin: int(getEnvAsInt64("RESERVATION_RATE_LIMIT_PER_MINUTE", 10)),
		MetricsEnabled:             getEnvAsBool("METRICS_ENABLED", true),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

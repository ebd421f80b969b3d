package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Fees     FeesConfig
	Locks    LocksConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
}

type PostgresConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers    []string
	Topic      string
	Partitions int
	Version    string
}

// GetSaramaConfig builds the consumer settings for the notifier worker.
func (k *KafkaConfig) GetSaramaConfig() *sarama.Config {
	config := sarama.NewConfig()

	if k.Version != "" {
		version, err := sarama.ParseKafkaVersion(k.Version)
		if err == nil {
			config.Version = version
		}
	}

	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.AutoCommit.Enable = true
	config.Consumer.Offsets.AutoCommit.Interval = 2 * time.Minute
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	config.Consumer.Fetch.Min = 1
	config.Consumer.Fetch.Default = 1024 * 1024
	config.Consumer.MaxWaitTime = 100 * time.Millisecond

	config.Net.MaxOpenRequests = 5
	config.Net.DialTimeout = 30 * time.Second
	config.Net.ReadTimeout = 30 * time.Second
	config.Net.WriteTimeout = 30 * time.Second

	return config
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type AuthConfig struct {
	JWTSecret string
}

type FeesConfig struct {
	// PlatformFeeBps is the marketplace cut in basis points (1000 = 10%).
	// The fee schedule is an external input, never a compile-time constant.
	PlatformFeeBps int64
	// PlatformAccountUserID owns the wallet that collects platform fees.
	PlatformAccountUserID string
}

type LocksConfig struct {
	// AcquireTimeout is the ceiling on waiting for a wallet or product
	// lock before the caller gets a retryable Busy error.
	AcquireTimeout time.Duration
}

type WorkerConfig struct {
	ProcessingInterval time.Duration
	SweepInterval      time.Duration
}

func New() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("POSTGRES_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:      getEnv("KAFKA_TOPIC", "wallet-events"),
			Partitions: getEnvInt("KAFKA_PARTITIONS", 3),
			Version:    os.Getenv("KAFKA_VERSION"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Fees: FeesConfig{
			PlatformFeeBps:        int64(getEnvInt("PLATFORM_FEE_BPS", 1000)),
			PlatformAccountUserID: getEnv("PLATFORM_ACCOUNT_USER_ID", "platform"),
		},
		Locks: LocksConfig{
			AcquireTimeout: getEnvDuration("LOCK_TIMEOUT", 3*time.Second),
		},
		Worker: WorkerConfig{
			ProcessingInterval: getEnvDuration("WORKER_PROCESSING_INTERVAL", 500*time.Millisecond),
			SweepInterval:      getEnvDuration("AUCTION_SWEEP_INTERVAL", 15*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

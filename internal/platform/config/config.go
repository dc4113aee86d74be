package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig

	Vision       ClientConfig
	LLM          ClientConfig
	Resilience   ResilienceConfig
	Verification VerificationConfig
	Delivery     DeliveryConfig
}

// PostgresConfig holds the connection settings for the relational store.
// An empty DSN means Postgres is not configured and memory stores are used.
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds connection settings for the Redis delivery store.
// An empty URL means Redis is not configured.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit event sink settings. Empty brokers disable the
// Kafka sink and audit events stay in the local store only.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// ClientConfig holds settings for an outbound AI service client.
type ClientConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	Timeout    time.Duration
}

// ResilienceConfig carries the retry and circuit breaker defaults shared by
// all outbound service calls.
type ResilienceConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	FailureThreshold int
	CooldownPeriod   time.Duration
}

// VerificationConfig carries the death verification thresholds.
type VerificationConfig struct {
	MatchThreshold float64
	MinConfidence  float64
}

// DeliveryConfig carries the notification dispatcher settings.
type DeliveryConfig struct {
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	WebhookSecret  string
	SMTPAddr       string
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:          envOr("LEGATUM_ADDR", ":8080"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "legatum.audit.events"),
		},
		Vision: ClientConfig{
			Endpoint: os.Getenv("VISION_ENDPOINT"),
			APIKey:   os.Getenv("VISION_API_KEY"),
			Timeout:  envDurationOr("VISION_TIMEOUT", 30*time.Second),
		},
		LLM: ClientConfig{
			Endpoint:   os.Getenv("LLM_ENDPOINT"),
			APIKey:     os.Getenv("LLM_API_KEY"),
			Deployment: envOr("LLM_DEPLOYMENT", "gpt-4"),
			Timeout:    envDurationOr("LLM_TIMEOUT", 30*time.Second),
		},
		Resilience: ResilienceConfig{
			MaxRetries:       envIntOr("RESILIENCE_MAX_RETRIES", 3),
			BaseDelay:        envDurationOr("RESILIENCE_BASE_DELAY", time.Second),
			MaxDelay:         envDurationOr("RESILIENCE_MAX_DELAY", 60*time.Second),
			FailureThreshold: envIntOr("RESILIENCE_FAILURE_THRESHOLD", 5),
			CooldownPeriod:   envDurationOr("RESILIENCE_COOLDOWN", 5*time.Minute),
		},
		Verification: VerificationConfig{
			MatchThreshold: envFloatOr("VERIFICATION_MATCH_THRESHOLD", 0.8),
			MinConfidence:  envFloatOr("VERIFICATION_MIN_CONFIDENCE", 0.5),
		},
		Delivery: DeliveryConfig{
			MaxRetries:     envIntOr("DELIVERY_MAX_RETRIES", 3),
			RetryBaseDelay: envDurationOr("DELIVERY_RETRY_BASE_DELAY", 5*time.Minute),
			RetryMaxDelay:  envDurationOr("DELIVERY_RETRY_MAX_DELAY", time.Hour),
			WebhookSecret:  os.Getenv("DELIVERY_WEBHOOK_SECRET"),
			SMTPAddr:       os.Getenv("SMTP_ADDR"),
			SMTPFrom:       envOr("SMTP_FROM", "no-reply@legatum.local"),
			SMTPUsername:   os.Getenv("SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}

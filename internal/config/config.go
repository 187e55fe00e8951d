package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration derived from environment variables.
// Collaborator credentials and endpoints live here rather than on long-lived
// client objects, so every client is constructed from an explicit immutable
// snapshot.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string

	PostgresDSN   string
	RedisAddr     string
	ClickHouseDSN string

	// Video intelligence provider
	VideoIndexURL      string
	VideoIndexAPIKey   string
	VideoIndexTimeout  time.Duration
	SearchHitsPerQuery int

	// Recommendation provider
	RecommenderURL     string
	RecommenderAPIKey  string
	RecommenderModel   string
	RecommenderTimeout time.Duration

	// Bounded concurrency for per-moment recommendation lookups
	RecommendConcurrency int

	// Collaborator response cache
	ResponseCacheTTL time.Duration

	// Database connection pooling
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// Tracing
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Analytics event log
	AnalyticsEnabled bool
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8080")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 10*time.Second)
	// Analysis requests block on two external AI services; the write timeout
	// has to cover a full battery of searches plus enrichment.
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 5*time.Minute)
	cfg.ServiceName = getenv("SERVICE_NAME", "momentmatch")

	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/momentmatch?sslmode=disable")
	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default?async_insert=1&wait_for_async_insert=1")

	cfg.VideoIndexURL = getenv("VIDEO_INDEX_URL", "https://api.twelvelabs.io/v1.2")
	cfg.VideoIndexAPIKey = getenv("VIDEO_INDEX_API_KEY", "")
	cfg.VideoIndexTimeout = envDuration("VIDEO_INDEX_TIMEOUT", 30*time.Second)
	cfg.SearchHitsPerQuery = envInt("SEARCH_HITS_PER_QUERY", 3)

	cfg.RecommenderURL = getenv("RECOMMENDER_URL", "https://api.openai.com/v1")
	cfg.RecommenderAPIKey = getenv("RECOMMENDER_API_KEY", "")
	cfg.RecommenderModel = getenv("RECOMMENDER_MODEL", "o4-mini")
	cfg.RecommenderTimeout = envDuration("RECOMMENDER_TIMEOUT", 60*time.Second)

	cfg.RecommendConcurrency = envInt("RECOMMEND_CONCURRENCY", 4)

	cfg.ResponseCacheTTL = envDuration("RESPONSE_CACHE_TTL", 10*time.Minute)

	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)

	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.OTLPEndpoint = getenv("OTLP_ENDPOINT", "localhost:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	cfg.AnalyticsEnabled = envBool("ANALYTICS_ENABLED", false)

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}

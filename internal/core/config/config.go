// Package config loads service settings from the environment and view
// definitions from YAML.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type InvalidationCfg struct {
	Enabled     bool
	Brokers     []string
	Topic       string
	GroupID     string
	DedupeSize  int
	StartOldest bool
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr            string
	LogLevel        string
	LogConsole      bool
	LogSampleN      uint32
	DatabaseURL     string
	DBMaxOpenConns  int
	DBConnLifetime  time.Duration
	ViewsFile       string
	RedisAddr       string
	CacheEnabled    bool
	CacheTTL        time.Duration
	CacheLRUSize    int
	CacheOpTimeout  time.Duration
	RequestTimeout  time.Duration
	H3Res           int
	Invalidation    InvalidationCfg
	Metrics         MetricsCfg
	AllowedOrigins  string
	ShutdownTimeout time.Duration
}

// LoadDotenv reads .env.local then .env when present; existing variables win.
func LoadDotenv() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

func FromEnv() Config {
	res := getint("H3_RES", 7)
	if res < 0 || res > 15 {
		res = 7
	}

	return Config{
		Addr:            getenv("ADDR", ":8080"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogConsole:      getbool("LOG_CONSOLE", false),
		LogSampleN:      uint32(max(getint("LOG_SAMPLE_N", 0), 0)),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		DBMaxOpenConns:  getint("DB_MAX_OPEN_CONNS", 20),
		DBConnLifetime:  getduration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ViewsFile:       getenv("VIEWS_FILE", "views.yaml"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		CacheEnabled:    getbool("CACHE_ENABLED", true),
		CacheTTL:        getduration("CACHE_TTL", 5*time.Minute),
		CacheLRUSize:    getint("CACHE_LRU_SIZE", 256),
		CacheOpTimeout:  getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		RequestTimeout:  getduration("REQUEST_TIMEOUT", 30*time.Second),
		H3Res:           res,
		AllowedOrigins:  getenv("ALLOWED_ORIGINS", "*"),
		ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Invalidation: InvalidationCfg{
			Enabled:     getbool("INVALIDATION_ENABLED", false),
			Brokers:     splitList(getenv("KAFKA_BROKERS", "localhost:9092")),
			Topic:       getenv("KAFKA_TOPIC", "table-updates"),
			GroupID:     getenv("KAFKA_GROUP_ID", "geodata-explorer"),
			DedupeSize:  getint("KAFKA_DEDUPE_SIZE", 4096),
			StartOldest: getbool("KAFKA_START_OLDEST", false),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", true),
			Addr:    getenv("METRICS_ADDR", ""),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

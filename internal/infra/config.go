package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	APIKeys          []string
	AllowedOrigins   []string
	DefaultLocale    string
	DataFile         string
	CacheDir         string
	CallLogFile      string
	GeoIPDBPath      string
	GrokBaseURL      string
	GrokSSOTokens    []string
	GrokTimeout      time.Duration
	MaxTasks         int
	TaskTTL          time.Duration
	SaveInterval     time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Nothing is hard-required: the service runs with an
// empty credential pool and auth disabled, which the caller should log.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		APIKeys:          getEnvList("API_KEYS"),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "en"),
		DataFile:         getEnv("DATA_FILE", "./data/video_tasks.json"),
		CacheDir:         getEnv("CACHE_DIR", "./data/media_cache"),
		CallLogFile:      getEnv("CALL_LOG_FILE", "./data/call_log.jsonl"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		GrokBaseURL:      os.Getenv("GROK_BASE_URL"),
		GrokSSOTokens:    getEnvList("GROK_SSO_TOKENS"),
		GrokTimeout:      time.Second * time.Duration(getEnvInt("GROK_TIMEOUT_SECONDS", 600)),
		MaxTasks:         getEnvInt("MAX_TASKS", 1000),
		TaskTTL:          time.Hour * time.Duration(getEnvInt("TASK_TTL_HOURS", 24)),
		SaveInterval:     time.Second * time.Duration(getEnvInt("SAVE_INTERVAL_SECONDS", 2)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var values []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

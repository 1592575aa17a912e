package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full environment-driven configuration of the notifier.
type Config struct {
	AppCfg      AppConfig
	DBConfig    DBConfig
	KafkaCfg    KafkaConfig
	BillingCfg  BillingConfig
	ChatCfg     ChatConfig
	PipelineCfg PipelineConfig
	CronCfg     CronConfig
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Port string
	// CacheSweepInterval is how often expired subscriber credentials are
	// swept from the in-memory cache. Zero disables the sweeper and keeps
	// the lazy expiry-on-read behavior only.
	CacheSweepInterval time.Duration
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	URL         string
	MaxOpenConn int
	ConnMaxIdle time.Duration
}

// KafkaConfig holds the run-report producer settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// BillingConfig holds the billing backend client settings.
type BillingConfig struct {
	BaseURL string
}

// ChatConfig holds the bot API client settings.
type ChatConfig struct {
	BaseURL string
	Token   string
}

// PipelineConfig tunes the notification pipeline stages.
type PipelineConfig struct {
	// ThrottleDelay is the fixed pause between successive subscribers
	// entering the fan-out, capping load on the billing backend.
	ThrottleDelay time.Duration
	// FanoutWidth caps concurrently in-flight subscriber sequences.
	FanoutWidth int
	// RetentionWindow is how long a delivered notification stays in the
	// store before the cleanup stage reaps and retracts it.
	RetentionWindow time.Duration
}

// CronConfig holds the four trigger schedules in standard 5-field cron
// syntax. The defaults approximate "13:00 five days before month end" and
// its one-day / cleanup counterparts; plain cron cannot express
// last-day-relative dates, so deployments should override these per their
// billing calendar.
type CronConfig struct {
	SendFiveDays  string
	CleanFiveDays string
	SendOneDay    string
	CleanOneDay   string
}

const (
	defaultPort            = "8080"
	defaultSweepInterval   = 10 * time.Minute
	defaultThrottleDelay   = 1 * time.Second
	defaultFanoutWidth     = 10
	defaultRetentionWindow = 32 * time.Hour

	defaultCronSendFive  = "0 13 26 * *"
	defaultCronCleanFive = "0 21 27 * *"
	defaultCronSendOne   = "0 13 30 * *"
	defaultCronCleanOne  = "0 21 1 * *"
)

// LoadConfig loads configuration from environment variables, applying
// documented defaults for everything except the external endpoints.
func LoadConfig() (*Config, error) {
	dbURL := os.Getenv("BILLNOTIFY_DB_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("BILLNOTIFY_DB_URL is required")
	}

	cfg := &Config{
		AppCfg: AppConfig{
			Port:               getEnv("BILLNOTIFY_PORT", defaultPort),
			CacheSweepInterval: getDuration("BILLNOTIFY_CACHE_SWEEP_INTERVAL", defaultSweepInterval),
		},
		DBConfig: DBConfig{
			URL:         dbURL,
			MaxOpenConn: getInt("BILLNOTIFY_DB_MAX_OPEN", 10),
			ConnMaxIdle: getDuration("BILLNOTIFY_DB_CONN_IDLE", 5*time.Minute),
		},
		KafkaCfg: KafkaConfig{
			Brokers: splitNonEmpty(getEnv("BILLNOTIFY_KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("BILLNOTIFY_KAFKA_TOPIC", "billnotify.runs"),
		},
		BillingCfg: BillingConfig{
			BaseURL: getEnv("BILLNOTIFY_BILLING_URL", "http://localhost:9090"),
		},
		ChatCfg: ChatConfig{
			BaseURL: getEnv("BILLNOTIFY_BOT_URL", "https://api.telegram.org"),
			Token:   os.Getenv("BILLNOTIFY_BOT_TOKEN"),
		},
		PipelineCfg: PipelineConfig{
			ThrottleDelay:   getDuration("BILLNOTIFY_THROTTLE_DELAY", defaultThrottleDelay),
			FanoutWidth:     getInt("BILLNOTIFY_FANOUT_WIDTH", defaultFanoutWidth),
			RetentionWindow: getDuration("BILLNOTIFY_RETENTION_WINDOW", defaultRetentionWindow),
		},
		CronCfg: CronConfig{
			SendFiveDays:  getEnv("BILLNOTIFY_CRON_SEND_FIVE", defaultCronSendFive),
			CleanFiveDays: getEnv("BILLNOTIFY_CRON_CLEAN_FIVE", defaultCronCleanFive),
			SendOneDay:    getEnv("BILLNOTIFY_CRON_SEND_ONE", defaultCronSendOne),
			CleanOneDay:   getEnv("BILLNOTIFY_CRON_CLEAN_ONE", defaultCronCleanOne),
		},
	}

	if cfg.PipelineCfg.FanoutWidth <= 0 {
		return nil, fmt.Errorf("BILLNOTIFY_FANOUT_WIDTH must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitNonEmpty(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

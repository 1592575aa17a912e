package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("db url is required", func(t *testing.T) {
		t.Setenv("BILLNOTIFY_DB_URL", "")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "BILLNOTIFY_DB_URL")
	})

	t.Run("defaults apply when unset", func(t *testing.T) {
		t.Setenv("BILLNOTIFY_DB_URL", "postgres://localhost/billnotify")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 1*time.Second, cfg.PipelineCfg.ThrottleDelay)
		assert.Equal(t, 10, cfg.PipelineCfg.FanoutWidth)
		assert.Equal(t, 32*time.Hour, cfg.PipelineCfg.RetentionWindow)
		assert.Equal(t, 10*time.Minute, cfg.AppCfg.CacheSweepInterval)
		assert.Equal(t, "0 13 26 * *", cfg.CronCfg.SendFiveDays)
		assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaCfg.Brokers)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("BILLNOTIFY_DB_URL", "postgres://localhost/billnotify")
		t.Setenv("BILLNOTIFY_THROTTLE_DELAY", "250ms")
		t.Setenv("BILLNOTIFY_FANOUT_WIDTH", "4")
		t.Setenv("BILLNOTIFY_RETENTION_WINDOW", "48h")
		t.Setenv("BILLNOTIFY_KAFKA_BROKERS", "k1:9092, k2:9092")
		t.Setenv("BILLNOTIFY_CRON_SEND_ONE", "0 10 28 * *")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 250*time.Millisecond, cfg.PipelineCfg.ThrottleDelay)
		assert.Equal(t, 4, cfg.PipelineCfg.FanoutWidth)
		assert.Equal(t, 48*time.Hour, cfg.PipelineCfg.RetentionWindow)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaCfg.Brokers)
		assert.Equal(t, "0 10 28 * *", cfg.CronCfg.SendOneDay)
	})

	t.Run("zero fanout width is rejected", func(t *testing.T) {
		t.Setenv("BILLNOTIFY_DB_URL", "postgres://localhost/billnotify")
		t.Setenv("BILLNOTIFY_FANOUT_WIDTH", "0")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "FANOUT_WIDTH")
	})
}

package scheduler

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispbot/billnotify/internal/config"
	"github.com/ispbot/billnotify/internal/service"
)

type nopPipeline struct{}

func (nopPipeline) Send(context.Context, service.DaysMarker)    {}
func (nopPipeline) Cleanup(context.Context, service.DaysMarker) {}

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CronConfig
		wantErr bool
	}{
		{
			name: "default specs register all four triggers",
			cfg: config.CronConfig{
				SendFiveDays:  "0 13 26 * *",
				CleanFiveDays: "0 21 27 * *",
				SendOneDay:    "0 13 30 * *",
				CleanOneDay:   "0 21 1 * *",
			},
			wantErr: false,
		},
		{
			name: "invalid spec is rejected at registration",
			cfg: config.CronConfig{
				SendFiveDays:  "not-a-cron",
				CleanFiveDays: "0 21 27 * *",
				SendOneDay:    "0 13 30 * *",
				CleanOneDay:   "0 21 1 * *",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler(nopPipeline{}, tt.cfg, slog.Default())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, s.cron.Entries(), 4)

			s.Start()
			s.Stop()
		})
	}
}

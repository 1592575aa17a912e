// Package scheduler binds the pipeline's four entry points to cron
// schedules. The core stays free of wall-clock logic: this package only
// fires triggers, consumes no return values and dispatches each run onto
// its own goroutine so trigger callbacks return immediately.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/ispbot/billnotify/internal/config"
	"github.com/ispbot/billnotify/internal/service"
)

// Scheduler owns the cron runner and the four trigger registrations.
type Scheduler struct {
	cron     *cron.Cron
	pipeline service.Pipeline
	cfg      config.CronConfig
	log      *slog.Logger
}

// NewScheduler creates a scheduler with its four triggers registered.
func NewScheduler(pipeline service.Pipeline, cfg config.CronConfig, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		pipeline: pipeline,
		cfg:      cfg,
		log:      log,
	}

	triggers := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"send_five_days", cfg.SendFiveDays, func(ctx context.Context) { pipeline.Send(ctx, service.FiveDays) }},
		{"cleanup_five_days", cfg.CleanFiveDays, func(ctx context.Context) { pipeline.Cleanup(ctx, service.FiveDays) }},
		{"send_one_day", cfg.SendOneDay, func(ctx context.Context) { pipeline.Send(ctx, service.OneDay) }},
		{"cleanup_one_day", cfg.CleanOneDay, func(ctx context.Context) { pipeline.Cleanup(ctx, service.OneDay) }},
	}

	for _, trig := range triggers {
		trig := trig
		_, err := s.cron.AddFunc(trig.spec, func() {
			// Fire and forget: the run proceeds off the cron goroutine
			// and reports its outcome to observability, not to us.
			go trig.run(context.Background())
		})
		if err != nil {
			return nil, fmt.Errorf("register trigger %s (%q): %w", trig.name, trig.spec, err)
		}
		log.Info("Registered trigger", slog.String("trigger", trig.name), slog.String("spec", trig.spec))
	}

	return s, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Starting trigger scheduler")
	s.cron.Start()
}

// Stop stops firing new triggers and waits for cron callbacks to return.
// In-flight pipeline runs are not interrupted.
func (s *Scheduler) Stop() {
	s.log.Info("Stopping trigger scheduler")
	<-s.cron.Stop().Done()
}

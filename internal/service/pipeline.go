package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ispbot/billnotify/internal/billing"
	"github.com/ispbot/billnotify/internal/chat"
	"github.com/ispbot/billnotify/internal/config"
	"github.com/ispbot/billnotify/internal/metrics"
	"github.com/ispbot/billnotify/internal/model"
	"github.com/ispbot/billnotify/internal/report"
	"github.com/ispbot/billnotify/internal/runid"
	"github.com/ispbot/billnotify/internal/source"
	"github.com/ispbot/billnotify/internal/store"
)

// DaysMarker tells the billing gateway how many days remain until the
// payment deadline for this run.
type DaysMarker int

const (
	FiveDays DaysMarker = 5
	OneDay   DaysMarker = 1
)

func (m DaysMarker) String() string {
	switch m {
	case FiveDays:
		return "five_days"
	case OneDay:
		return "one_day"
	default:
		return "unknown"
	}
}

// Pipeline runs the notification lifecycle: throttled gateway calls fanned
// out to bounded-concurrency chat delivery with one batched persist, and a
// later cleanup pass that reaps and retracts aged records.
//
// Entry points return nothing: the scheduler fires and forgets, run
// outcomes go to logs, metrics and the run-report topic.
type Pipeline interface {
	Send(ctx context.Context, marker DaysMarker)
	Cleanup(ctx context.Context, marker DaysMarker)
}

type pipeline struct {
	subs     source.Subscribers
	gateway  billing.Gateway
	channel  chat.Channel
	store    store.Notifications
	reporter report.Reporter

	cfg config.PipelineConfig
	now func() time.Time
	l   *slog.Logger
}

// NewPipeline creates a new notification pipeline instance.
func NewPipeline(
	subs source.Subscribers,
	gateway billing.Gateway,
	channel chat.Channel,
	notifStore store.Notifications,
	reporter report.Reporter,
	cfg config.PipelineConfig,
	logger *slog.Logger,
) Pipeline {
	return &pipeline{
		subs:     subs,
		gateway:  gateway,
		channel:  channel,
		store:    notifStore,
		reporter: reporter,
		cfg:      cfg,
		now:      time.Now,
		l:        logger,
	}
}

// sendOutcome accumulates one send run's per-subscriber results. Failures
// are isolated per subscriber: one bad subscriber never blocks the rest of
// the batch, successes are persisted regardless and failures reported in
// aggregate.
type sendOutcome struct {
	mu       sync.Mutex
	records  []model.DeliveryRecord
	failed   int
	firstErr error
}

func (o *sendOutcome) success(rec model.DeliveryRecord) {
	o.mu.Lock()
	o.records = append(o.records, rec)
	o.mu.Unlock()
}

func (o *sendOutcome) failure(err error) {
	o.mu.Lock()
	o.failed++
	if o.firstErr == nil {
		o.firstErr = err
	}
	o.mu.Unlock()
}

// Send executes one scheduled send run for the given days marker.
func (p *pipeline) Send(ctx context.Context, marker DaysMarker) {
	ctx, id := runid.NewContext(ctx)
	trigger := "send_" + marker.String()
	start := p.now()

	log := p.l.With(slog.String("run_id", id), slog.String("trigger", trigger))
	log.InfoContext(ctx, "Send run started")

	// A failed fetch aborts the whole run; nothing is sent or persisted.
	eligible, err := p.subs.ListNotificationEnabled(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch eligible subscribers", slog.Any("error", err))
		p.finishRun(ctx, log, trigger, start, model.RunReport{
			RunID: id, Trigger: trigger, Error: err.Error(),
		}, "aborted")
		return
	}

	outcome := &sendOutcome{}
	eg, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.cfg.FanoutWidth)

	for i, sub := range eligible {
		// The billing backend does not tolerate bursts: a fixed pause
		// between successive subscribers entering the fan-out.
		if i > 0 && p.cfg.ThrottleDelay > 0 {
			select {
			case <-time.After(p.cfg.ThrottleDelay):
			case <-gctx.Done():
			}
		}
		if gctx.Err() != nil {
			break
		}

		sub := sub
		sem <- struct{}{}
		eg.Go(func() error {
			defer func() { <-sem }()
			p.processSubscriber(gctx, log, sub, marker, outcome)
			// Per-subscriber failures are already collected; never
			// fail the group, so the rest of the batch proceeds.
			return nil
		})
	}
	_ = eg.Wait()

	delivered := len(outcome.records)
	if delivered > 0 {
		if err := p.store.SaveAll(ctx, outcome.records); err != nil {
			log.ErrorContext(ctx, "Failed to persist delivery records",
				slog.Int("count", delivered), slog.Any("error", err))
			p.finishRun(ctx, log, trigger, start, model.RunReport{
				RunID: id, Trigger: trigger,
				Attempted: len(eligible), Delivered: delivered, Failed: outcome.failed,
				Error: err.Error(),
			}, "aborted")
			return
		}
	}

	rep := model.RunReport{
		RunID: id, Trigger: trigger,
		Attempted: len(eligible), Delivered: delivered, Failed: outcome.failed,
	}
	outcomeLabel := "success"
	if outcome.failed > 0 {
		outcomeLabel = "partial"
		rep.Error = outcome.firstErr.Error()
	}
	p.finishRun(ctx, log, trigger, start, rep, outcomeLabel)
}

// processSubscriber runs one subscriber's two-call sequence: the gateway
// call always completes before its delivery call begins.
func (p *pipeline) processSubscriber(
	ctx context.Context,
	log *slog.Logger,
	sub model.Subscriber,
	marker DaysMarker,
	outcome *sendOutcome,
) {
	payload, err := p.gateway.BuildNotification(ctx, sub, int(marker))
	if err != nil {
		log.ErrorContext(ctx, "Gateway call failed",
			slog.Int64("chat_id", sub.ChatID), slog.Any("error", err))
		metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
		outcome.failure(err)
		return
	}

	rec, err := p.channel.Deliver(ctx, sub.ChatID, payload)
	if err != nil {
		log.ErrorContext(ctx, "Chat delivery failed",
			slog.Int64("chat_id", sub.ChatID), slog.Any("error", err))
		metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
		outcome.failure(err)
		return
	}

	metrics.DeliveriesTotal.WithLabelValues("delivered").Inc()
	outcome.success(rec)
}

// Cleanup executes one scheduled cleanup run: reap due records from the
// store, then retract the corresponding chat messages.
func (p *pipeline) Cleanup(ctx context.Context, marker DaysMarker) {
	ctx, id := runid.NewContext(ctx)
	trigger := "cleanup_" + marker.String()
	start := p.now()

	log := p.l.With(slog.String("run_id", id), slog.String("trigger", trigger))
	log.InfoContext(ctx, "Cleanup run started")

	removed, err := p.store.SelectAndRemoveDue(ctx, p.cfg.RetentionWindow)
	if err != nil {
		log.ErrorContext(ctx, "Failed to reap due delivery records", slog.Any("error", err))
		p.finishRun(ctx, log, trigger, start, model.RunReport{
			RunID: id, Trigger: trigger, Error: err.Error(),
		}, "aborted")
		return
	}
	metrics.RecordsReaped.Add(float64(len(removed)))

	outcome := &sendOutcome{}
	eg, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.cfg.FanoutWidth)

	for _, rec := range removed {
		rec := rec
		sem <- struct{}{}
		eg.Go(func() error {
			defer func() { <-sem }()
			// The record is already gone from the store, so a failed
			// retraction is terminal for it: log and move on, never
			// silently retried.
			if err := p.channel.Retract(gctx, rec.ChatID, rec.MessageID); err != nil {
				log.ErrorContext(gctx, "Retraction failed",
					slog.Int64("chat_id", rec.ChatID),
					slog.Int64("message_id", rec.MessageID),
					slog.Any("error", err))
				outcome.failure(err)
			}
			return nil
		})
	}
	_ = eg.Wait()

	rep := model.RunReport{
		RunID: id, Trigger: trigger,
		Attempted: len(removed), Delivered: len(removed) - outcome.failed, Failed: outcome.failed,
	}
	outcomeLabel := "success"
	if outcome.failed > 0 {
		outcomeLabel = "partial"
		rep.Error = outcome.firstErr.Error()
	}
	p.finishRun(ctx, log, trigger, start, rep, outcomeLabel)
}

// finishRun records metrics, logs the result and publishes the run report.
func (p *pipeline) finishRun(
	ctx context.Context,
	log *slog.Logger,
	trigger string,
	start time.Time,
	rep model.RunReport,
	outcomeLabel string,
) {
	rep.FinishedAt = p.now().Unix()
	metrics.RunsTotal.WithLabelValues(trigger, outcomeLabel).Inc()
	metrics.RunDuration.WithLabelValues(trigger).Observe(p.now().Sub(start).Seconds())

	log.InfoContext(ctx, "Run finished",
		slog.String("outcome", outcomeLabel),
		slog.Int("attempted", rep.Attempted),
		slog.Int("delivered", rep.Delivered),
		slog.Int("failed", rep.Failed))

	if err := p.reporter.ReportRun(ctx, rep); err != nil {
		log.ErrorContext(ctx, "Failed to publish run report", slog.Any("error", err))
	}
}

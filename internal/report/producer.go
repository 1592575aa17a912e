// Package report publishes run outcomes to the observability topic. The
// scheduler never sees pipeline errors; this producer is where they surface.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/ispbot/billnotify/internal/model"
	"github.com/ispbot/billnotify/internal/runid"
)

// Reporter defines the interface for publishing run reports.
type Reporter interface {
	Start(ctx context.Context)
	ReportRun(ctx context.Context, report model.RunReport) error
	Close(ctx context.Context)
}

type producer struct {
	asyncProducer sarama.AsyncProducer
	topic         string
	log           *slog.Logger
	wg            *sync.WaitGroup
	closeOnce     sync.Once
}

// NewProducer uses DI to inject the AsyncProducer, topic, logger and WaitGroup.
func NewProducer(asyncProducer sarama.AsyncProducer, topic string, log *slog.Logger, wg *sync.WaitGroup) Reporter {
	if asyncProducer == nil || log == nil || wg == nil {
		panic("NewProducer: nil dependencies provided")
	}
	if topic == "" {
		panic("NewProducer: topic must not be empty")
	}
	return &producer{
		asyncProducer: asyncProducer,
		topic:         topic,
		log:           log,
		wg:            wg,
	}
}

// Start launches background handlers for success and error channels.
func (p *producer) Start(ctx context.Context) {
	p.log.Info("Starting run-report producer handlers")
	p.wg.Add(2)
	go p.handleSuccess(ctx)
	go p.handleErrors(ctx)
}

// handleSuccess logs successful deliveries
func (p *producer) handleSuccess(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case msg, ok := <-p.asyncProducer.Successes():
			if !ok {
				p.log.Info("Kafka successes channel closed")
				return
			}
			key, _ := msg.Key.Encode()
			p.log.Info("Run report delivered",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("run_id", string(key)))
		case <-ctx.Done():
			p.log.Info("Kafka success handler stopped by context")
			return
		}
	}
}

// handleErrors logs failed deliveries
func (p *producer) handleErrors(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case err, ok := <-p.asyncProducer.Errors():
			if !ok {
				p.log.Info("Kafka errors channel closed")
				return
			}
			p.log.Error("Run report delivery failed",
				slog.String("topic", err.Msg.Topic),
				slog.Any("error", err.Err))
		case <-ctx.Done():
			p.log.Info("Kafka error handler stopped by context")
			return
		}
	}
}

// ReportRun queues one run report, keyed and headed by the run's
// correlation id so downstream consumers can join it with log lines.
func (p *producer) ReportRun(ctx context.Context, report model.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(report.RunID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte("run_id"), Value: []byte(runid.FromContext(ctx))},
		},
	}

	select {
	case p.asyncProducer.Input() <- msg:
		p.log.Info("Run report queued",
			slog.String("topic", p.topic),
			slog.String("run_id", report.RunID),
			slog.String("trigger", report.Trigger))
		return nil
	case <-ctx.Done():
		p.log.Warn("Run report cancelled by context", slog.String("run_id", report.RunID))
		return ctx.Err()
	}
}

// Close shuts down the producer and waits for workers.
func (p *producer) Close(_ context.Context) {
	p.closeOnce.Do(func() {
		p.log.Info("Closing run-report producer...")
		p.asyncProducer.AsyncClose()
		p.wg.Wait()
		p.log.Info("Run-report producer closed")
	})
}

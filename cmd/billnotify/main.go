package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/ispbot/billnotify/internal/billing"
	"github.com/ispbot/billnotify/internal/chat"
	"github.com/ispbot/billnotify/internal/config"
	"github.com/ispbot/billnotify/internal/credcache"
	"github.com/ispbot/billnotify/internal/handler"
	"github.com/ispbot/billnotify/internal/logger"
	"github.com/ispbot/billnotify/internal/metrics"
	"github.com/ispbot/billnotify/internal/report"
	"github.com/ispbot/billnotify/internal/router"
	"github.com/ispbot/billnotify/internal/scheduler"
	"github.com/ispbot/billnotify/internal/service"
	"github.com/ispbot/billnotify/internal/source"
	"github.com/ispbot/billnotify/internal/store"
)

func main() {
	// .env values fill in anything the environment doesn't set already.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize the application logger.
	logr := logger.NewLogger()
	metrics.Init()

	// --- Dependency Injection Setup ---

	// One shared database connection pool for the store and the source.
	db, err := store.ConnectPostgres(cfg.DBConfig)
	if err != nil {
		logr.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	notifStore := store.NewPostgresStore(db)
	subSource := source.NewPostgresSource(db)

	// Credential cache shared by every billing caller in the process.
	cache := credcache.NewCache(logr)
	auth := billing.NewHTTPAuthenticator(cfg.BillingCfg.BaseURL, nil)
	sessions := billing.NewSessionProvider(cache, auth, logr)
	gateway := billing.NewHTTPGateway(cfg.BillingCfg.BaseURL, nil, sessions, logr)

	channel := chat.NewBotChannel(cfg.ChatCfg.BaseURL, cfg.ChatCfg.Token, nil, logr)

	// Run-report producer on the observability topic.
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Return.Errors = true
	asyncProducer, err := sarama.NewAsyncProducer(cfg.KafkaCfg.Brokers, saramaCfg)
	if err != nil {
		logr.Error("failed to create Kafka producer", "error", err)
		os.Exit(1)
	}

	var producerWG sync.WaitGroup
	reporter := report.NewProducer(asyncProducer, cfg.KafkaCfg.Topic, logr, &producerWG)

	pipeline := service.NewPipeline(subSource, gateway, channel, notifStore, reporter, cfg.PipelineCfg, logr)

	sched, err := scheduler.NewScheduler(pipeline, cfg.CronCfg, logr)
	if err != nil {
		logr.Error("failed to register triggers", "error", err)
		os.Exit(1)
	}

	// HTTP ops surface: health, readiness, metrics.
	healthSvc := service.NewHealthService(notifStore)
	hHandler := handler.NewHealthHandler(healthSvc)
	hServer := &http.Server{
		Addr:    ":" + cfg.AppCfg.Port,
		Handler: router.NewRouter(hHandler),
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reporter.Start(rootCtx)
	sched.Start()

	// Use a WaitGroup to gracefully shut down all goroutines.
	var wg sync.WaitGroup

	// Background sweep of expired subscriber credentials.
	if cfg.AppCfg.CacheSweepInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cache.StartSweeper(rootCtx, cfg.AppCfg.CacheSweepInterval); err != nil && !errors.Is(err, context.Canceled) {
				logr.Error("credential sweeper stopped with error", "error", err)
			}
		}()
	}

	// Start HTTP server in a separate goroutine.
	wg.Add(1)
	go func() {
		defer wg.Done()
		logr.Info("Starting ops server", "addr", hServer.Addr)
		if err := hServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("Ops server failed", "error", err)
		}
	}()

	// Wait for a termination signal from the OS.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logr.Info("Shutdown signal received")

	// Stop firing new triggers, then wind everything down.
	sched.Stop()
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	hServer.Shutdown(ctx)

	reporter.Close(ctx)
	wg.Wait()
	logr.Info("Service shut down gracefully")
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/topicpulse/topicpulse/internal/analysis"
	"github.com/topicpulse/topicpulse/internal/api"
	"github.com/topicpulse/topicpulse/internal/archive"
	"github.com/topicpulse/topicpulse/internal/config"
	"github.com/topicpulse/topicpulse/internal/dispatch"
	"github.com/topicpulse/topicpulse/internal/fetcher"
	"github.com/topicpulse/topicpulse/internal/models"
	"github.com/topicpulse/topicpulse/internal/notifications"
	"github.com/topicpulse/topicpulse/internal/scheduler"
	"github.com/topicpulse/topicpulse/internal/sentiment"
	"github.com/topicpulse/topicpulse/internal/source"
	"github.com/topicpulse/topicpulse/internal/store"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting TopicPulse sentiment analysis service")

	// Initialize job store
	jobStore, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to initialize job store: %v", err)
	}
	defer jobStore.Close()

	// Initialize the sentiment classifier once for the whole process and
	// warm it so the first job does not pay for initialization.
	classifier := sentiment.NewLexiconClassifier(cfg.SentimentModel)
	classifier.Warm()

	// Initialize the document source and the backoff-guarded fetcher
	twitterSource := source.NewTwitterSource(cfg.TwitterBearerToken)
	docFetcher := fetcher.New(twitterSource, fetcher.Config{
		MaxRetries:       cfg.FetchMaxRetries,
		BaseDelaySeconds: cfg.FetchBaseDelaySeconds,
		MaxDelaySeconds:  cfg.FetchMaxDelaySeconds,
		MinTextLength:    cfg.MinTextLength,
	}, nil)

	orchestrator := analysis.NewOrchestrator(jobStore, docFetcher, classifier, cfg.MaxTweetsPerAnalysis)

	// Optional collaborators reacting to finished jobs
	notifier := notifications.NewService(cfg)

	var resultArchive *archive.ResultArchive
	if cfg.StorageAccount != "" {
		resultArchive, err = archive.NewResultArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize result archive: %v", err)
		}
	}

	onFinished := func(jobID string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		job, err := orchestrator.GetJob(ctx, jobID)
		if err != nil {
			logrus.Errorf("Cannot load finished job %s: %v", jobID, err)
			return
		}

		if resultArchive != nil && job.Status == models.JobStatusCompleted {
			if err := resultArchive.StoreResult(ctx, job); err != nil {
				logrus.Errorf("Failed to archive result for job %s: %v", jobID, err)
			}
		}

		if notifier.Enabled() {
			if err := notifier.NotifyJobFinished(job); err != nil {
				logrus.Errorf("Failed to notify for job %s: %v", jobID, err)
			}
		}
	}

	dispatcher := dispatch.NewInProcess(orchestrator, int64(cfg.MaxConcurrentJobs), onFinished)

	// Start retention sweeper
	sweeper := scheduler.NewService(jobStore, cfg.RetentionDays, cfg.RetentionSchedule)
	if err := sweeper.Start(); err != nil {
		logrus.Fatalf("Failed to start retention sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Set up HTTP server
	handler := api.NewHandler(orchestrator, dispatcher)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Let in-flight jobs reach a terminal state before exiting
	dispatcher.Drain()

	logrus.Info("Server exited")
}

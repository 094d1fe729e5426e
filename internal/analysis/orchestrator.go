// Package analysis owns the job lifecycle: creating analysis jobs,
// executing the fetch → classify → aggregate → persist workflow, and
// reading results back. A job moves pending → processing → completed or
// failed; terminal states have no outgoing transitions.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/topicpulse/topicpulse/internal/models"
	"github.com/topicpulse/topicpulse/internal/sentiment"
	"github.com/topicpulse/topicpulse/internal/store"
)

const maxTopicLength = 200

// ValidationError describes a malformed analysis request. It is returned
// synchronously from CreateJob; no job is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DocumentFetcher retrieves cleaned documents about a topic.
type DocumentFetcher interface {
	Fetch(ctx context.Context, topic string, maxDocuments int) ([]models.Document, error)
}

// Orchestrator sequences the analysis workflow and is the only writer of
// job state transitions.
type Orchestrator struct {
	store      store.JobStore
	fetcher    DocumentFetcher
	classifier sentiment.Classifier
	maxTweets  int // ceiling for a single analysis request
}

// NewOrchestrator wires the orchestrator's collaborators. maxTweets bounds
// how many documents a single job may request.
func NewOrchestrator(jobStore store.JobStore, fetcher DocumentFetcher, classifier sentiment.Classifier, maxTweets int) *Orchestrator {
	return &Orchestrator{
		store:      jobStore,
		fetcher:    fetcher,
		classifier: classifier,
		maxTweets:  maxTweets,
	}
}

// CreateJob validates the request, registers a pending job, and returns its
// id. It performs no fetching: the single durable write here is the only
// side effect.
func (o *Orchestrator) CreateJob(ctx context.Context, topic string, maxDocuments int) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", &ValidationError{Field: "topic", Reason: "must not be empty"}
	}
	if len([]rune(topic)) > maxTopicLength {
		return "", &ValidationError{Field: "topic", Reason: fmt.Sprintf("must be at most %d characters", maxTopicLength)}
	}
	if maxDocuments < 1 {
		return "", &ValidationError{Field: "max_tweets", Reason: "must be a positive integer"}
	}
	if maxDocuments > o.maxTweets {
		return "", &ValidationError{Field: "max_tweets", Reason: fmt.Sprintf("must be at most %d", o.maxTweets)}
	}

	job := &models.Job{
		ID:        uuid.NewString(),
		Topic:     topic,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := o.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("register job: %w", err)
	}

	logrus.Infof("Created analysis job %s for topic %q", job.ID, topic)
	return job.ID, nil
}

// ExecuteJob runs the workflow body for a previously created job and
// reports whether it reached a completed state. Exactly one terminal
// transition occurs per execution; the orchestrator never retries a whole
// job, only the fetch step retries internally. Panics from collaborators
// are caught at this boundary and recorded as the job's failure cause.
func (o *Orchestrator) ExecuteJob(ctx context.Context, jobID, topic string, maxDocuments int) (success bool) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Panic executing job %s: %v", jobID, r)
			o.failJob(ctx, jobID, fmt.Sprintf("unexpected error: %v", r))
			success = false
		}
	}()

	logrus.Infof("Executing job %s (topic %q, max %d documents)", jobID, topic, maxDocuments)

	// A missing record here is fatal for this attempt: there is nothing to
	// record the outcome against.
	if err := o.store.UpdateStatus(ctx, jobID, models.JobStatusProcessing, nil, ""); err != nil {
		logrus.Errorf("Cannot mark job %s as processing: %v", jobID, err)
		return false
	}

	docs, err := o.fetcher.Fetch(ctx, topic, maxDocuments)
	if err != nil {
		o.failJob(ctx, jobID, err.Error())
		return false
	}

	for i := range docs {
		label, score := o.classifier.AnalyzeText(docs[i].Text)
		docs[i].SentimentLabel = label
		docs[i].SentimentScore = &score
	}

	result := Aggregate(docs)

	if err := o.store.UpdateStatus(ctx, jobID, models.JobStatusCompleted, &result, ""); err != nil {
		logrus.Errorf("Failed to persist result for job %s: %v", jobID, err)
		o.failJob(ctx, jobID, fmt.Sprintf("failed to persist result: %v", err))
		return false
	}

	logrus.Infof("Job %s completed: %d/%d documents analyzed", jobID, result.AnalyzedTweets, result.TotalTweets)
	return true
}

// GetJob is a read-through to the job store. Unknown ids surface as
// store.ErrNotFound.
func (o *Orchestrator) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	return o.store.Get(ctx, jobID)
}

func (o *Orchestrator) failJob(ctx context.Context, jobID, cause string) {
	if err := o.store.UpdateStatus(ctx, jobID, models.JobStatusFailed, nil, cause); err != nil {
		logrus.Errorf("Failed to mark job %s as failed: %v", jobID, err)
	} else {
		logrus.Warnf("Job %s failed: %s", jobID, cause)
	}
}

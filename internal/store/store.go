// Package store persists job records. The schema mirrors the job lifecycle:
// one row per job id, result and error columns populated only on terminal
// transitions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/topicpulse/topicpulse/internal/models"
)

// ErrNotFound is returned when no job exists for the requested id.
var ErrNotFound = errors.New("job not found")

// JobStore is the durable keyed storage contract for job records.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, jobID string) (*models.Job, error)
	UpdateStatus(ctx context.Context, jobID string, status models.JobStatus, result *models.SentimentResult, errorMessage string) error
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type jobRecord struct {
	JobID        string `gorm:"primaryKey;column:job_id"`
	Topic        string `gorm:"not null"`
	Status       string `gorm:"not null"`
	CreatedAt    time.Time
	CompletedAt  *time.Time
	Result       datatypes.JSON
	ErrorMessage *string
}

func (jobRecord) TableName() string { return "analyses" }

// SQLiteStore implements JobStore on a SQLite database file.
type SQLiteStore struct {
	db *gorm.DB
}

var _ JobStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath and migrates the
// schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&jobRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate job records: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// Create inserts a new job record. The job id must not already exist.
func (s *SQLiteStore) Create(ctx context.Context, job *models.Job) error {
	record, err := toRecord(job)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

// Get returns the job for jobID, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, jobID string) (*models.Job, error) {
	var record jobRecord
	if err := s.db.WithContext(ctx).First(&record, "job_id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return fromRecord(&record)
}

// UpdateStatus moves the job to status. Result and errorMessage are written
// when provided; the completion timestamp is set when status is terminal.
// Updating a missing record returns ErrNotFound rather than silently
// succeeding.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, jobID string, status models.JobStatus, result *models.SentimentResult, errorMessage string) error {
	values := map[string]any{"status": string(status)}

	if status.Terminal() {
		now := time.Now().UTC()
		values["completed_at"] = &now
	}
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal result for job %s: %w", jobID, err)
		}
		values["result"] = datatypes.JSON(data)
	}
	if errorMessage != "" {
		values["error_message"] = &errorMessage
	}

	tx := s.db.WithContext(ctx).Model(&jobRecord{}).Where("job_id = ?", jobID).Updates(values)
	if tx.Error != nil {
		return fmt.Errorf("update job %s: %w", jobID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("update job %s: %w", jobID, ErrNotFound)
	}
	return nil
}

// DeleteTerminalBefore removes completed and failed jobs whose completion
// timestamp predates cutoff, and returns how many were removed. In-flight
// jobs are never touched.
func (s *SQLiteStore) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).
		Where("status IN ? AND completed_at < ?",
			[]string{string(models.JobStatusCompleted), string(models.JobStatusFailed)}, cutoff).
		Delete(&jobRecord{})
	if tx.Error != nil {
		return 0, fmt.Errorf("delete terminal jobs: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

func toRecord(job *models.Job) (*jobRecord, error) {
	record := &jobRecord{
		JobID:       job.ID,
		Topic:       job.Topic,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.Result != nil {
		data, err := json.Marshal(job.Result)
		if err != nil {
			return nil, fmt.Errorf("marshal result for job %s: %w", job.ID, err)
		}
		record.Result = datatypes.JSON(data)
	}
	if job.ErrorMessage != "" {
		record.ErrorMessage = &job.ErrorMessage
	}
	return record, nil
}

func fromRecord(record *jobRecord) (*models.Job, error) {
	job := &models.Job{
		ID:          record.JobID,
		Topic:       record.Topic,
		Status:      models.JobStatus(record.Status),
		CreatedAt:   record.CreatedAt,
		CompletedAt: record.CompletedAt,
	}
	if len(record.Result) > 0 {
		var result models.SentimentResult
		if err := json.Unmarshal(record.Result, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result for job %s: %w", record.JobID, err)
		}
		job.Result = &result
	}
	if record.ErrorMessage != nil {
		job.ErrorMessage = *record.ErrorMessage
	}
	return job, nil
}

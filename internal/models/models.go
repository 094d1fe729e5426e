package models

import "time"

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Document is one retrieved and cleaned text sample. Sentiment fields are
// unset until the classifier has run; once set they are not changed.
type Document struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	AuthorID       string    `json:"author_id"`
	CreatedAt      time.Time `json:"created_at"`
	SentimentLabel string    `json:"sentiment_label,omitempty"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
}

// SentimentResult holds the aggregated statistics for one completed job.
// Percentages are over analyzed documents and lie in [0,100].
type SentimentResult struct {
	PositivePercentage float64 `json:"positive_percentage"`
	NegativePercentage float64 `json:"negative_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`
	AveragePolarity    float64 `json:"average_polarity"`
	TotalTweets        int     `json:"total_tweets"`
	AnalyzedTweets     int     `json:"analyzed_tweets"`
}

// Job is the tracked unit of work from topic submission to terminal result.
// Result is set only on completed jobs, ErrorMessage only on failed ones,
// and CompletedAt only once the job reaches a terminal status.
type Job struct {
	ID           string           `json:"job_id"`
	Topic        string           `json:"topic"`
	Status       JobStatus        `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	Result       *SentimentResult `json:"result,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

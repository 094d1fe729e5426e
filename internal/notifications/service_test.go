package notifications

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topicpulse/topicpulse/internal/config"
	"github.com/topicpulse/topicpulse/internal/models"
)

func completedJob() *models.Job {
	completedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return &models.Job{
		ID:          "job-1",
		Topic:       "coffee",
		Status:      models.JobStatusCompleted,
		CreatedAt:   completedAt.Add(-time.Minute),
		CompletedAt: &completedAt,
		Result: &models.SentimentResult{
			PositivePercentage: 50.0,
			NegativePercentage: 25.0,
			NeutralPercentage:  25.0,
			AveragePolarity:    0.65,
			TotalTweets:        5,
			AnalyzedTweets:     4,
		},
	}
}

func failedJob() *models.Job {
	completedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return &models.Job{
		ID:           "job-2",
		Topic:        "coffee",
		Status:       models.JobStatusFailed,
		CreatedAt:    completedAt.Add(-time.Minute),
		CompletedAt:  &completedAt,
		ErrorMessage: "document source retries exhausted",
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want bool
	}{
		{name: "Nothing configured", cfg: config.Config{}, want: false},
		{name: "Teams webhook only", cfg: config.Config{TeamsWebhookURL: "https://example.com/hook"}, want: true},
		{name: "Email only", cfg: config.Config{NotificationEmail: "team@example.com"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(&tt.cfg)
			assert.Equal(t, tt.want, service.Enabled())
		})
	}
}

func TestBuildTeamsMessage_CompletedJob(t *testing.T) {
	service := NewService(&config.Config{})

	message := service.buildTeamsMessage(completedJob())

	assert.Equal(t, "MessageCard", message.Type)
	assert.Contains(t, message.Title, `"coffee"`)
	assert.Contains(t, message.Text, "job-1")

	require.Len(t, message.Sections, 1)
	facts := map[string]string{}
	for _, fact := range message.Sections[0].Facts {
		facts[fact.Name] = fact.Value
	}
	assert.Equal(t, "coffee", facts["Topic"])
	assert.Equal(t, "completed", facts["Status"])
	assert.Equal(t, "4 of 5", facts["Tweets Analyzed"])
	assert.Equal(t, "50.0%", facts["Positive"])
	assert.Equal(t, "25.0%", facts["Negative"])
	assert.Equal(t, "0.650", facts["Average Polarity"])
	assert.NotContains(t, facts, "Error")
}

func TestBuildTeamsMessage_FailedJob(t *testing.T) {
	service := NewService(&config.Config{})

	message := service.buildTeamsMessage(failedJob())

	require.Len(t, message.Sections, 1)
	facts := map[string]string{}
	for _, fact := range message.Sections[0].Facts {
		facts[fact.Name] = fact.Value
	}
	assert.Equal(t, "failed", facts["Status"])
	assert.Equal(t, "document source retries exhausted", facts["Error"])
	assert.NotContains(t, facts, "Positive")
}

func TestBuildEmailText(t *testing.T) {
	service := NewService(&config.Config{})

	text := service.buildEmailText(completedJob())

	assert.Contains(t, text, "Topic: coffee")
	assert.Contains(t, text, "Status: completed")
	assert.Contains(t, text, "Tweets analyzed: 4 of 5")
	assert.Contains(t, text, "Positive: 50.0%")
	assert.Contains(t, text, "Average polarity: 0.650")
	assert.NotContains(t, text, "Error:")

	failedText := service.buildEmailText(failedJob())
	assert.Contains(t, failedText, "Error: document source retries exhausted")
	assert.NotContains(t, failedText, "RESULTS")
}

func TestNotifyJobFinished_TeamsWebhook(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})

	err := service.NotifyJobFinished(completedJob())
	require.NoError(t, err)
	assert.Equal(t, "MessageCard", received.Type)
	assert.Contains(t, received.Text, "job-1")
}

func TestNotifyJobFinished_WebhookFailureReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})

	err := service.NotifyJobFinished(completedJob())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teams")
}

// Package api exposes the HTTP surface: job submission, result polling,
// and a liveness probe.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/topicpulse/topicpulse/internal/analysis"
	"github.com/topicpulse/topicpulse/internal/dispatch"
	"github.com/topicpulse/topicpulse/internal/models"
	"github.com/topicpulse/topicpulse/internal/store"
)

// defaultMaxTweets is used when a submission omits max_tweets.
const defaultMaxTweets = 10

// AnalysisService is the slice of the orchestrator the handlers need.
type AnalysisService interface {
	CreateJob(ctx context.Context, topic string, maxDocuments int) (string, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
}

type analyzeRequest struct {
	Topic     string `json:"topic"`
	MaxTweets *int   `json:"max_tweets"`
}

type analyzeResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type resultsResponse struct {
	JobID       string     `json:"job_id"`
	Status      string     `json:"status"`
	Topic       string     `json:"topic"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	PositivePercentage *float64 `json:"positive_percentage,omitempty"`
	NegativePercentage *float64 `json:"negative_percentage,omitempty"`
	NeutralPercentage  *float64 `json:"neutral_percentage,omitempty"`
	AveragePolarity    *float64 `json:"average_polarity,omitempty"`
	TotalTweets        *int     `json:"total_tweets,omitempty"`
	AnalyzedTweets     *int     `json:"analyzed_tweets,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler serves the analysis API.
type Handler struct {
	service    AnalysisService
	dispatcher dispatch.Dispatcher
}

// NewHandler creates the API handler.
func NewHandler(service AnalysisService, dispatcher dispatch.Dispatcher) *Handler {
	return &Handler{service: service, dispatcher: dispatcher}
}

// Router builds the mux router with all API routes.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/analyze", h.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/results/{job_id}", h.handleResults).Methods(http.MethodGet)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	return router
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be valid JSON"})
		return
	}

	maxTweets := defaultMaxTweets
	if req.MaxTweets != nil {
		maxTweets = *req.MaxTweets
	}

	jobID, err := h.service.CreateJob(r.Context(), req.Topic, maxTweets)
	if err != nil {
		var validationErr *analysis.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request data", Details: validationErr.Error()})
			return
		}
		logrus.Errorf("Failed to create analysis job: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	h.dispatcher.Dispatch(dispatch.Task{JobID: jobID, Topic: req.Topic, MaxDocuments: maxTweets})

	writeJSON(w, http.StatusAccepted, analyzeResponse{
		JobID:   jobID,
		Status:  string(models.JobStatusPending),
		Message: "Analysis job created successfully",
	})
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]

	job, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "analysis job not found"})
			return
		}
		logrus.Errorf("Failed to retrieve job %s: %v", jobID, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	resp := resultsResponse{
		JobID:        job.ID,
		Status:       string(job.Status),
		Topic:        job.Topic,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
		ErrorMessage: job.ErrorMessage,
	}

	if job.Result != nil {
		resp.PositivePercentage = &job.Result.PositivePercentage
		resp.NegativePercentage = &job.Result.NegativePercentage
		resp.NeutralPercentage = &job.Result.NeutralPercentage
		resp.AveragePolarity = &job.Result.AveragePolarity
		resp.TotalTweets = &job.Result.TotalTweets
		resp.AnalyzedTweets = &job.Result.AnalyzedTweets
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "sentiment-analysis-api",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

package source

import (
	"context"

	"github.com/topicpulse/topicpulse/internal/models"
)

// Source defines the contract for a document source. Search returns a
// deduplicated set of raw documents matching the query, at most maxResults.
type Source interface {
	GetName() string
	Search(ctx context.Context, query string, maxResults int) ([]models.Document, error)
	IsEnabled() bool
}

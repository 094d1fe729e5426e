package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/topicpulse/topicpulse/internal/models"
)

const (
	recentSearchURL = "https://api.twitter.com/2/tweets/search/recent"

	// Twitter API v2 bounds for max_results on recent search.
	minResultsPerCall = 10
	maxResultsPerCall = 100
)

// TwitterSource implements Source against the Twitter/X API v2 recent
// search endpoint.
type TwitterSource struct {
	bearerToken string
	baseURL     string
	client      *resty.Client
}

var _ Source = (*TwitterSource)(nil)

type twitterSearchResponse struct {
	Data []twitterTweet `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

type twitterTweet struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	AuthorID         string `json:"author_id"`
	CreatedAt        string `json:"created_at"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
}

// NewTwitterSource creates a new Twitter source
func NewTwitterSource(bearerToken string) *TwitterSource {
	return &TwitterSource{
		bearerToken: bearerToken,
		baseURL:     recentSearchURL,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "TopicPulse/1.0"),
	}
}

func (t *TwitterSource) GetName() string {
	return "twitter"
}

func (t *TwitterSource) IsEnabled() bool {
	return t.bearerToken != ""
}

// Search queries the recent search endpoint for documents matching query.
// A single call is capped at the API limit of 100 results; requests above
// the cap are silently capped. The request restricts results to English and
// excludes retweets; any retweet slipping through is skipped, and results
// are deduplicated by tweet id.
func (t *TwitterSource) Search(ctx context.Context, query string, maxResults int) ([]models.Document, error) {
	if !t.IsEnabled() {
		return nil, fmt.Errorf("twitter bearer token not configured: %w", ErrUnauthorized)
	}

	perCall := maxResults
	if perCall > maxResultsPerCall {
		perCall = maxResultsPerCall
	}
	if perCall < minResultsPerCall {
		perCall = minResultsPerCall
	}

	fullQuery := query + " lang:en -is:retweet"
	searchURL := fmt.Sprintf("%s?query=%s&max_results=%d&tweet.fields=created_at,author_id,referenced_tweets",
		t.baseURL, url.QueryEscape(fullQuery), perCall)

	logrus.Debugf("Twitter API request: %s", searchURL)

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+t.bearerToken).
		Get(searchURL)

	if err != nil {
		return nil, fmt.Errorf("twitter request failed: %v: %w", err, ErrTransient)
	}

	switch code := resp.StatusCode(); {
	case code == 429:
		if reset := resp.Header().Get("x-rate-limit-reset"); reset != "" {
			logrus.Warnf("Twitter API rate limit hit, resets at %s", reset)
		} else {
			logrus.Warn("Twitter API rate limit hit")
		}
		return nil, fmt.Errorf("twitter API returned status 429: %w", ErrRateLimited)
	case code == 401 || code == 403:
		return nil, fmt.Errorf("twitter API returned status %d: %w", code, ErrUnauthorized)
	case code == 400 || code == 422:
		logrus.Errorf("Twitter API rejected query %q: %s", query, string(resp.Body()))
		return nil, fmt.Errorf("twitter API returned status %d: %w", code, ErrBadRequest)
	case code != 200:
		logrus.Errorf("Twitter API error: status %d, body: %s", code, string(resp.Body()))
		return nil, fmt.Errorf("twitter API returned status %d: %w", code, ErrTransient)
	}

	var searchResp twitterSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Twitter response: %v: %w", err, ErrTransient)
	}

	logrus.Infof("Twitter API returned %d tweets for query %q", len(searchResp.Data), query)

	seen := make(map[string]bool)
	var docs []models.Document

	for _, tweet := range searchResp.Data {
		if t.isRetweet(tweet) || seen[tweet.ID] {
			continue
		}
		seen[tweet.ID] = true

		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			logrus.Errorf("Failed to parse Twitter timestamp: %v", err)
			continue
		}

		docs = append(docs, models.Document{
			ID:        tweet.ID,
			Text:      tweet.Text,
			AuthorID:  tweet.AuthorID,
			CreatedAt: createdAt,
		})
	}

	return docs, nil
}

func (t *TwitterSource) isRetweet(tweet twitterTweet) bool {
	for _, ref := range tweet.ReferencedTweets {
		if ref.Type == "retweeted" {
			return true
		}
	}
	return false
}

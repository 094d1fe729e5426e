package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/topicpulse/topicpulse/internal/models"
	"github.com/topicpulse/topicpulse/internal/source"
)

// ErrRetriesExhausted is returned when every attempt against the document
// source failed with a retryable error.
var ErrRetriesExhausted = errors.New("document source retries exhausted")

const (
	jitterMin = 0.8
	jitterMax = 1.2
)

// Config holds the retry and filtering policy for a Fetcher. MaxRetries is
// honored as configured: 0 means a single attempt with no retries. The
// delay and length fields fall back to the policy defaults when zero.
type Config struct {
	MaxRetries       int // retries beyond the initial attempt; 0 disables retries
	BaseDelaySeconds int // default 60
	MaxDelaySeconds  int // default 900
	MinTextLength    int // cleaned texts under this many runes are dropped, default 10
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelaySeconds <= 0 {
		c.BaseDelaySeconds = 60
	}
	if c.MaxDelaySeconds <= 0 {
		c.MaxDelaySeconds = 900
	}
	if c.MinTextLength <= 0 {
		c.MinTextLength = 10
	}
	return c
}

// Fetcher wraps a document source with exponential backoff against
// rate-limit and transient failures, and cleans what comes back.
type Fetcher struct {
	source source.Source
	cfg    Config
	clock  clockwork.Clock
}

// New creates a Fetcher around src. A nil clock uses the wall clock.
func New(src source.Source, cfg Config, clock clockwork.Clock) *Fetcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Fetcher{source: src, cfg: cfg.withDefaults(), clock: clock}
}

// Fetch retrieves up to maxDocuments cleaned documents about topic.
// Rate-limit and transient source errors are retried with backoff up to the
// configured budget; authorization and malformed-request errors fail
// immediately. A source returning zero items is a successful empty fetch.
func (f *Fetcher) Fetch(ctx context.Context, topic string, maxDocuments int) ([]models.Document, error) {
	query := NormalizeTopic(topic)

	var lastErr error
	attempts := f.cfg.MaxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		raw, err := f.source.Search(ctx, query, maxDocuments)
		if err == nil {
			docs := f.cleanAndFilter(raw, maxDocuments)
			logrus.Infof("Retrieved %d documents for topic %q", len(docs), topic)
			return docs, nil
		}

		if !source.Retryable(err) {
			logrus.Errorf("Non-retryable error fetching topic %q: %v", topic, err)
			return nil, err
		}

		lastErr = err
		if attempt == f.cfg.MaxRetries {
			break
		}

		delay := f.jittered(f.delayForAttempt(attempt))
		logrus.Warnf("Retryable error fetching topic %q (attempt %d/%d), backing off %v: %v",
			topic, attempt+1, attempts, delay, err)

		select {
		case <-f.clock.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch cancelled during backoff: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("fetching topic %q failed after %d attempts: %w: %w", topic, attempts, ErrRetriesExhausted, lastErr)
}

func (f *Fetcher) cleanAndFilter(raw []models.Document, maxDocuments int) []models.Document {
	var docs []models.Document
	for _, doc := range raw {
		cleaned := CleanText(doc.Text)
		if utf8.RuneCountInString(cleaned) < f.cfg.MinTextLength {
			continue
		}
		doc.Text = cleaned
		docs = append(docs, doc)
		if len(docs) == maxDocuments {
			break
		}
	}
	return docs
}

// delayForAttempt computes the pre-jitter backoff for a zero-based attempt
// number: min(base * 2^attempt, max).
func (f *Fetcher) delayForAttempt(attempt int) time.Duration {
	seconds := f.cfg.MaxDelaySeconds
	if attempt < 31 {
		if shifted := f.cfg.BaseDelaySeconds << attempt; shifted < seconds {
			seconds = shifted
		}
	}
	return time.Duration(seconds) * time.Second
}

// jittered applies a multiplicative jitter uniform in [0.8, 1.2] and
// truncates to whole seconds.
func (f *Fetcher) jittered(d time.Duration) time.Duration {
	factor := jitterMin + (jitterMax-jitterMin)*rand.Float64()
	return time.Duration(int64(d.Seconds()*factor)) * time.Second
}

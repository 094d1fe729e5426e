// Package sentiment provides the sentiment classification capability.
// Classification never fails: texts the classifier cannot assess degrade to
// a neutral label with a 0.5 score.
package sentiment

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Canonical sentiment labels. Anything a backing model emits is normalized
// to one of these before leaving this package.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

const (
	neutralScore  = 0.5
	minTextLength = 3
)

// Result is one classified text.
type Result struct {
	Label string
	Score float64
}

// Classifier assigns a sentiment label and a confidence score in [0,1] to
// text. Implementations must be safe for concurrent use and must not fail:
// internal errors map to the neutral fallback.
type Classifier interface {
	AnalyzeText(text string) (label string, score float64)
	AnalyzeBatch(texts []string) []Result
}

// LexiconClassifier scores text against positive and negative word lists.
// It is a process-wide shared capability: the lexicon is built once on
// first use, guarded by sync.Once, and reads are lock-free afterwards.
type LexiconClassifier struct {
	model string

	once     sync.Once
	positive map[string]struct{}
	negative map[string]struct{}
}

var _ Classifier = (*LexiconClassifier)(nil)

// NewLexiconClassifier creates a classifier for the given model identifier.
// The identifier is informational; the lexicon itself is built in-process.
func NewLexiconClassifier(model string) *LexiconClassifier {
	return &LexiconClassifier{model: model}
}

// Warm forces lexicon initialization up front, so the first job does not
// pay for it.
func (c *LexiconClassifier) Warm() {
	c.once.Do(c.buildLexicon)
}

func (c *LexiconClassifier) buildLexicon() {
	logrus.Infof("Initializing sentiment model %q", c.model)

	positiveWords := []string{
		"good", "great", "excellent", "love", "loved", "awesome", "fantastic",
		"amazing", "wonderful", "helpful", "works", "solved", "success",
		"best", "happy", "enjoy", "perfect", "recommend", "brilliant", "nice",
	}
	negativeWords := []string{
		"bad", "terrible", "awful", "hate", "hated", "broken", "error",
		"fail", "failed", "problem", "issue", "bug", "worst", "horrible",
		"disappointing", "useless", "slow", "crash", "annoying", "poor",
	}

	c.positive = make(map[string]struct{}, len(positiveWords))
	for _, w := range positiveWords {
		c.positive[w] = struct{}{}
	}
	c.negative = make(map[string]struct{}, len(negativeWords))
	for _, w := range negativeWords {
		c.negative[w] = struct{}{}
	}
}

// AnalyzeText classifies a single text. Very short texts are neutral by
// contract.
func (c *LexiconClassifier) AnalyzeText(text string) (string, float64) {
	c.once.Do(c.buildLexicon)

	if len(strings.TrimSpace(text)) < minTextLength {
		return LabelNeutral, neutralScore
	}

	var positive, negative int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if _, ok := c.positive[word]; ok {
			positive++
		}
		if _, ok := c.negative[word]; ok {
			negative++
		}
	}

	total := positive + negative
	if total == 0 || positive == negative {
		return LabelNeutral, neutralScore
	}

	diff := positive - negative
	if diff < 0 {
		diff = -diff
	}
	score := neutralScore + neutralScore*float64(diff)/float64(total)
	if score > 1 {
		score = 1
	}

	if positive > negative {
		return normalizeLabel(LabelPositive), score
	}
	return normalizeLabel(LabelNegative), score
}

// AnalyzeBatch classifies each text in order.
func (c *LexiconClassifier) AnalyzeBatch(texts []string) []Result {
	results := make([]Result, len(texts))
	for i, text := range texts {
		label, score := c.AnalyzeText(text)
		results[i] = Result{Label: label, Score: score}
	}
	return results
}

// normalizeLabel maps model output labels onto the canonical set. Unknown
// labels degrade to neutral so downstream aggregation only ever sees the
// three classes.
func normalizeLabel(label string) string {
	switch strings.ToLower(label) {
	case "positive", "pos":
		return LabelPositive
	case "negative", "neg":
		return LabelNegative
	default:
		return LabelNeutral
	}
}

package analysis

import (
	"github.com/topicpulse/topicpulse/internal/models"
	"github.com/topicpulse/topicpulse/internal/sentiment"
)

// Aggregate computes summary statistics over a set of classified documents.
// It is pure and deterministic for a given input multiset: percentages per
// label class are taken over documents that carry a label, and average
// polarity over documents that carry a score. With nothing to analyze, all
// statistics are zero and only the counts reflect the input.
func Aggregate(docs []models.Document) models.SentimentResult {
	result := models.SentimentResult{TotalTweets: len(docs)}

	var positive, negative, neutral int
	var scoreSum float64
	var scored int

	for _, doc := range docs {
		switch doc.SentimentLabel {
		case sentiment.LabelPositive:
			positive++
		case sentiment.LabelNegative:
			negative++
		case sentiment.LabelNeutral:
			neutral++
		}
		if doc.SentimentLabel != "" {
			result.AnalyzedTweets++
		}
		if doc.SentimentScore != nil {
			scoreSum += *doc.SentimentScore
			scored++
		}
	}

	if result.AnalyzedTweets == 0 {
		return result
	}

	analyzed := float64(result.AnalyzedTweets)
	result.PositivePercentage = float64(positive) / analyzed * 100
	result.NegativePercentage = float64(negative) / analyzed * 100
	result.NeutralPercentage = float64(neutral) / analyzed * 100

	if scored > 0 {
		result.AveragePolarity = scoreSum / float64(scored)
	}

	return result
}

package sentiment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeText_Labels(t *testing.T) {
	classifier := NewLexiconClassifier("lexicon-v1")

	tests := []struct {
		name      string
		text      string
		wantLabel string
	}{
		{
			name:      "Clearly positive",
			text:      "This release is great, the new dashboard works and support was helpful",
			wantLabel: LabelPositive,
		},
		{
			name:      "Clearly negative",
			text:      "Terrible experience, the app is broken and the login keeps failing with an error",
			wantLabel: LabelNegative,
		},
		{
			name:      "No sentiment words",
			text:      "The meeting starts at noon in the usual room",
			wantLabel: LabelNeutral,
		},
		{
			name:      "Balanced sentiment is neutral",
			text:      "great product but terrible documentation",
			wantLabel: LabelNeutral,
		},
		{
			name:      "Punctuation does not hide sentiment words",
			text:      "Awesome! Really, truly awesome.",
			wantLabel: LabelPositive,
		},
		{
			name:      "Case insensitive",
			text:      "BROKEN again, WORST update ever",
			wantLabel: LabelNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, score := classifier.AnalyzeText(tt.text)
			assert.Equal(t, tt.wantLabel, label)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		})
	}
}

func TestAnalyzeText_ShortTextIsNeutral(t *testing.T) {
	classifier := NewLexiconClassifier("lexicon-v1")

	for _, text := range []string{"", "  ", "ok", " a "} {
		label, score := classifier.AnalyzeText(text)
		assert.Equal(t, LabelNeutral, label, "text %q", text)
		assert.Equal(t, 0.5, score)
	}
}

func TestAnalyzeText_ScoreReflectsDominance(t *testing.T) {
	classifier := NewLexiconClassifier("lexicon-v1")

	// All matched words agree: full confidence.
	_, unanimous := classifier.AnalyzeText("great awesome perfect")
	assert.Equal(t, 1.0, unanimous)

	// Two positive against one negative: 0.5 + 0.5*(1/3).
	label, mixed := classifier.AnalyzeText("great awesome but slow")
	assert.Equal(t, LabelPositive, label)
	assert.InDelta(t, 0.5+0.5/3.0, mixed, 1e-9)
	assert.Less(t, mixed, unanimous)
}

func TestAnalyzeBatch_PreservesOrder(t *testing.T) {
	classifier := NewLexiconClassifier("lexicon-v1")

	texts := []string{
		"love this, works perfectly",
		"what time is it",
		"awful bug, everything failed",
	}
	results := classifier.AnalyzeBatch(texts)

	require.Len(t, results, 3)
	assert.Equal(t, LabelPositive, results[0].Label)
	assert.Equal(t, LabelNeutral, results[1].Label)
	assert.Equal(t, LabelNegative, results[2].Label)
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	classifier := NewLexiconClassifier("lexicon-v1")

	results := classifier.AnalyzeBatch(nil)
	assert.Empty(t, results)
}

func TestWarm_ConcurrentUseIsSafe(t *testing.T) {
	classifier := NewLexiconClassifier("lexicon-v1")
	classifier.Warm()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				label, _ := classifier.AnalyzeText("great stuff, love it")
				assert.Equal(t, LabelPositive, label)
			}
		}()
	}
	wg.Wait()
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, LabelPositive, normalizeLabel("POS"))
	assert.Equal(t, LabelPositive, normalizeLabel("positive"))
	assert.Equal(t, LabelNegative, normalizeLabel("neg"))
	assert.Equal(t, LabelNeutral, normalizeLabel("unknown"))
	assert.Equal(t, LabelNeutral, normalizeLabel(""))
}

package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "URLs stripped",
			input:    "Check this out https://example.com/article now",
			expected: "Check this out now",
		},
		{
			name:     "Mentions stripped",
			input:    "Thanks @someuser for the tip",
			expected: "Thanks for the tip",
		},
		{
			name:     "Hashtag marker removed but text kept",
			input:    "Loving the new #coffee machine",
			expected: "Loving the new coffee machine",
		},
		{
			name:     "Retweet marker stripped",
			input:    "RT great thread about espresso",
			expected: "great thread about espresso",
		},
		{
			name:     "Whitespace collapsed",
			input:    "too   many\t\tspaces\nhere",
			expected: "too many spaces here",
		},
		{
			name:     "Everything at once",
			input:    "RT @bot: read https://t.co/abc #golang   rocks",
			expected: ": read golang rocks",
		},
		{
			name:     "Plain text untouched",
			input:    "nothing to clean here",
			expected: "nothing to clean here",
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	inputs := []string{
		"RT @user: check https://example.com #topic   and more",
		"already perfectly clean text",
		"#many #tags @and @mentions https://a.b",
	}

	for _, input := range inputs {
		once := CleanText(input)
		assert.Equal(t, once, CleanText(once), "re-cleaning %q changed the text", input)
	}
}

func TestNormalizeTopic(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		expected string
	}{
		{
			name:     "Plain topic quoted",
			topic:    "coffee",
			expected: `"coffee"`,
		},
		{
			name:     "Punctuation stripped",
			topic:    "what's new?!",
			expected: `"whats new"`,
		},
		{
			name:     "Surrounding whitespace trimmed",
			topic:    "  climate change  ",
			expected: `"climate change"`,
		},
		{
			name:     "Non-ASCII letters kept",
			topic:    "café münchen!",
			expected: `"café münchen"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTopic(tt.topic))
		})
	}
}

func TestNormalizeTopic_Deterministic(t *testing.T) {
	assert.Equal(t, NormalizeTopic("some topic!"), NormalizeTopic("some topic!"))
}

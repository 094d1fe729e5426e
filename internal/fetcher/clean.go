package fetcher

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`http[s]?://\S+`)
	mentionPattern    = regexp.MustCompile(`@\w+`)
	hashtagPattern    = regexp.MustCompile(`#(\w+)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	retweetPattern    = regexp.MustCompile(`^RT\s+`)
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// CleanText strips URLs, @mentions and the leading retweet marker from raw
// tweet text, keeps hashtag text without the marker, and collapses
// whitespace. Cleaning an already-cleaned text returns it unchanged.
func CleanText(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = hashtagPattern.ReplaceAllString(text, "$1")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = retweetPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// NormalizeTopic turns a topic into the source's expected query form:
// punctuation stripped, then quoted for exact-phrase matching. The same
// topic always yields the same query.
func NormalizeTopic(topic string) string {
	clean := nonWordPattern.ReplaceAllString(topic, "")
	clean = strings.TrimSpace(clean)
	return fmt.Sprintf("%q", clean)
}

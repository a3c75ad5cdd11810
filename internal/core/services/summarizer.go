package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

// maxKeyPoints bounds the number of key points per summary.
const maxKeyPoints = 3

// Summarize produces an extractive summary of one document. The summary
// is the document's leading sentences up to maxLength runes; key points
// are the sentences most representative of the document's vocabulary, in
// document order.
func Summarize(doc *domain.Document, maxLength int) domain.Summary {
	content := doc.Content
	if content == "" {
		content = doc.Snippet
	}
	sentences := splitSentences(content)

	return domain.Summary{
		DocumentID: doc.CompositeID(),
		Title:      doc.Title,
		Source:     doc.Source,
		Text:       leadingText(sentences, maxLength),
		KeyPoints:  keyPoints(sentences, maxKeyPoints),
	}
}

// leadingText joins leading sentences while they fit within maxLength
// runes. If even the first sentence is too long it is truncated with an
// ellipsis.
func leadingText(sentences []string, maxLength int) string {
	if maxLength <= 0 || len(sentences) == 0 {
		return ""
	}

	var b strings.Builder
	for _, sentence := range sentences {
		candidate := sentence
		if b.Len() > 0 {
			candidate = " " + sentence
		}
		if len([]rune(b.String()))+len([]rune(candidate)) > maxLength {
			break
		}
		b.WriteString(candidate)
	}

	if b.Len() == 0 {
		// First sentence alone exceeds the budget.
		runes := []rune(sentences[0])
		if len(runes) > maxLength {
			runes = runes[:maxLength]
		}
		return strings.TrimSpace(string(runes)) + "..."
	}

	return b.String()
}

// keyPoints scores each sentence by the frequency of its content words
// across the whole document and returns the top max sentences in their
// original order.
func keyPoints(sentences []string, max int) []string {
	if len(sentences) == 0 {
		return nil
	}

	freq := make(map[string]int)
	for _, sentence := range sentences {
		for _, word := range contentWords(sentence) {
			freq[word]++
		}
	}

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, 0, len(sentences))
	for i, sentence := range sentences {
		var score int
		for _, word := range contentWords(sentence) {
			score += freq[word]
		}
		ranked = append(ranked, scored{index: i, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if max > len(ranked) {
		max = len(ranked)
	}
	top := ranked[:max]
	sort.Slice(top, func(i, j int) bool {
		return top[i].index < top[j].index
	})

	points := make([]string, 0, len(top))
	for _, s := range top {
		point := sentences[s.index]
		if len(point) > 200 {
			point = point[:200] + "..."
		}
		points = append(points, point)
	}
	return points
}

// contentWords extracts lower-cased words longer than three characters,
// stripping surrounding punctuation.
func contentWords(sentence string) []string {
	var words []string
	for _, field := range strings.Fields(strings.ToLower(sentence)) {
		word := strings.Trim(field, ".,;:!?\"'()[]{}")
		if len(word) > 3 {
			words = append(words, word)
		}
	}
	return words
}

// splitSentences splits content into sentences by common terminators.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

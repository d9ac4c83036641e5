package classifier

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// keywordMatcher finds whole-word keyword hits in free text using a single
// Aho-Corasick pass. Keywords match only when bounded by spaces, so "top"
// never fires inside "desktop"; multi-word keywords like "sport bra" work
// unchanged. Patterns are stored space-padded and the input is padded the
// same way, which makes the automaton itself enforce the word boundary.
type keywordMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string       // normalized, in registration order
	index    map[string]int // keyword -> position in keywords
}

func normalize(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}

func newKeywordMatcher(keywords []string) *keywordMatcher {
	m := &keywordMatcher{
		keywords: make([]string, 0, len(keywords)),
		index:    make(map[string]int, len(keywords)),
	}

	padded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		normalized := normalize(kw)
		if normalized == "" {
			continue
		}
		if _, dup := m.index[normalized]; dup {
			continue
		}
		m.index[normalized] = len(m.keywords)
		m.keywords = append(m.keywords, normalized)
		padded = append(padded, " "+normalized+" ")
	}

	if len(padded) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(padded)
	}
	return m
}

// match returns the set of keywords present as whole words in text.
func (m *keywordMatcher) match(text string) map[string]bool {
	if m.matcher == nil || text == "" {
		return nil
	}

	padded := " " + strings.ToLower(text) + " "
	// Match mutates the automaton's dedup state; the thread-safe variant
	// keeps the classifier usable from concurrent callers.
	hitIndexes := m.matcher.MatchThreadSafe([]byte(padded))
	if len(hitIndexes) == 0 {
		return nil
	}

	hits := make(map[string]bool, len(hitIndexes))
	for _, idx := range hitIndexes {
		if idx < len(m.keywords) {
			hits[m.keywords[idx]] = true
		}
	}
	return hits
}

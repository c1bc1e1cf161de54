package nlp

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// keywordSet answers substring-containment questions for a fixed keyword
// list in a single pass over the input. Matching is case-insensitive and
// ignores word boundaries.
type keywordSet struct {
	keywords []string
	matcher  *ahocorasick.Matcher
}

func newKeywordSet(keywords []string) *keywordSet {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized = append(normalized, kw)
		}
	}

	s := &keywordSet{keywords: normalized}
	if len(normalized) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(normalized)
	}
	return s
}

// present returns the distinct keywords found in text, in dictionary order.
func (s *keywordSet) present(text string) []string {
	if s.matcher == nil || text == "" {
		return nil
	}

	hits := s.matcher.MatchThreadSafe([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return nil
	}

	found := make([]bool, len(s.keywords))
	for _, idx := range hits {
		if idx >= 0 && idx < len(found) {
			found[idx] = true
		}
	}

	out := make([]string, 0, len(hits))
	for i, ok := range found {
		if ok {
			out = append(out, s.keywords[i])
		}
	}
	return out
}

func (s *keywordSet) count(text string) int {
	return len(s.present(text))
}

func (s *keywordSet) any(text string) bool {
	return s.count(text) > 0
}

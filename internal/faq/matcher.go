// Package faq answers student questions from the static FAQ corpus.
package faq

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/campus-buddy/backend/internal/catalog"
)

const (
	GreetingReply = "Hello! I'm Campus Buddy. How can I help you today?"
	Cutoff        = 0.6
)

var greetings = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"}

// greetingPattern matches whole words only. A plain substring check would
// treat "which" or "they" as greetings.
var greetingPattern = regexp.MustCompile(`\b(?:` + strings.Join(greetings, "|") + `)\b`)

// Matcher resolves text to a greeting or to the answer of the most similar
// FAQ question. It holds only read-only state and is safe for concurrent use.
type Matcher struct {
	questions []string
	answers   []string
	// per question, split into runes for difflib
	seqs [][]string
}

// NewMatcher flattens entries in order. When a question repeats, the first
// answer wins.
func NewMatcher(entries []catalog.Entry) *Matcher {
	m := &Matcher{}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		q := normalize(e.Question)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		m.questions = append(m.questions, q)
		m.answers = append(m.answers, e.Answer)
		m.seqs = append(m.seqs, chars(q))
	}
	return m
}

func (m *Matcher) Len() int {
	return len(m.questions)
}

// IsGreeting reports whether text contains a greeting as a whole word.
func IsGreeting(text string) bool {
	return greetingPattern.MatchString(normalize(text))
}

// Match returns the greeting reply or the best FAQ answer scoring at least
// Cutoff. ok is false when neither applies.
func (m *Matcher) Match(text string) (string, bool) {
	input := normalize(text)
	if input == "" {
		return "", false
	}
	if greetingPattern.MatchString(input) {
		return GreetingReply, true
	}

	idx, _ := m.best(input)
	if idx < 0 {
		return "", false
	}
	return m.answers[idx], true
}

type candidate struct {
	index int
	score float64
}

// best mirrors difflib.get_close_matches with n=1: cheap upper bounds are
// checked before the full ratio, and equal scores prefer the larger
// question string.
func (m *Matcher) best(input string) (int, float64) {
	sm := difflib.NewMatcher(nil, nil)
	sm.SetSeq2(chars(input))

	var hits []candidate
	for i, seq := range m.seqs {
		sm.SetSeq1(seq)
		if sm.RealQuickRatio() >= Cutoff && sm.QuickRatio() >= Cutoff {
			if r := sm.Ratio(); r >= Cutoff {
				hits = append(hits, candidate{index: i, score: r})
			}
		}
	}
	if len(hits) == 0 {
		return -1, 0
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return m.questions[hits[a].index] > m.questions[hits[b].index]
	})
	return hits[0].index, hits[0].score
}

// Similarity returns the best ratio of text against the corpus, or zero.
func (m *Matcher) Similarity(text string) float64 {
	input := normalize(text)
	if input == "" {
		return 0
	}
	_, score := m.best(input)
	return score
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func chars(s string) []string {
	return strings.Split(s, "")
}

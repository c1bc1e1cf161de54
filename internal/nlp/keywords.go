package nlp

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/pkg/logger"
)

const DefaultKeywordsTop = 5

// TermSource proposes candidate keywords for a text, best first.
type TermSource interface {
	Terms(text string) ([]string, error)
}

// KeywordExtractor returns at most topN distinct terms from its source,
// dropping to LexicalTerms when the source fails.
type KeywordExtractor struct {
	source   TermSource
	fallback LexicalTerms
}

func NewKeywordExtractor(source TermSource) *KeywordExtractor {
	if source == nil {
		source = LexicalTerms{}
	}
	return &KeywordExtractor{source: source}
}

func (e *KeywordExtractor) Extract(text string, topN int) []string {
	if strings.TrimSpace(text) == "" || topN <= 0 {
		return []string{}
	}

	terms, err := e.source.Terms(text)
	if err != nil {
		logger.Debug("Keyword source failed, using lexical fallback", zap.Error(err))
		terms, _ = e.fallback.Terms(text)
	}

	return firstDistinct(terms, topN)
}

func firstDistinct(terms []string, n int) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, n)
	for _, t := range terms {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == n {
			break
		}
	}
	return out
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// LexicalTerms yields lowercased word tokens of four or more characters.
type LexicalTerms struct{}

func (LexicalTerms) Terms(text string) ([]string, error) {
	var terms []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(w) >= 4 {
			terms = append(terms, w)
		}
	}
	return terms, nil
}

// ProseTerms tags text with prose and yields nouns followed by noun
// phrases. A noun phrase is a run of adjectives and nouns of at least two
// tokens that ends on a noun.
type ProseTerms struct{}

func (ProseTerms) Terms(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	tokens := doc.Tokens()

	var nouns, phrases []string
	var run []prose.Token

	flush := func() {
		// trim trailing adjectives
		for len(run) > 0 && !isNoun(run[len(run)-1].Tag) {
			run = run[:len(run)-1]
		}
		if len(run) >= 2 {
			parts := make([]string, len(run))
			for i, tok := range run {
				parts[i] = tok.Text
			}
			phrases = append(phrases, strings.Join(parts, " "))
		}
		run = run[:0]
	}

	for _, tok := range tokens {
		switch {
		case isNoun(tok.Tag):
			nouns = append(nouns, tok.Text)
			run = append(run, tok)
		case isAdjective(tok.Tag):
			run = append(run, tok)
		default:
			flush()
		}
	}
	flush()

	return append(nouns, phrases...), nil
}

func isNoun(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}

func isAdjective(tag string) bool {
	switch tag {
	case "JJ", "JJR", "JJS":
		return true
	}
	return false
}

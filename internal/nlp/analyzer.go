// Package nlp implements the lexical classifiers applied to complaint text:
// priority, sentiment, keywords and category suggestion. All of them are
// advisory, stateless after construction, and safe for concurrent use.
package nlp

import (
	"errors"
	"fmt"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/catalog"
	"github.com/campus-buddy/backend/pkg/logger"
)

type Result struct {
	Priority          Priority  `json:"priority"`
	Sentiment         Sentiment `json:"sentiment"`
	Keywords          []string  `json:"keywords"`
	SuggestedCategory string    `json:"suggested_category"`
}

type Options struct {
	// Polarity enables the lexicon polarity scorer when prose is usable.
	Polarity bool
	// Linguistic enables prose part-of-speech keyword extraction.
	Linguistic bool
	KeywordsTop int
}

type Analyzer struct {
	priority  *PriorityDetector
	sentiment *SentimentLabeler
	keywords  *KeywordExtractor
	topN      int
}

// NewAnalyzer probes the optional prose capability once and wires each
// classifier to the strategy that will serve it for the process lifetime.
func NewAnalyzer(opts Options) *Analyzer {
	proseErr := probeProse()
	if proseErr != nil && (opts.Polarity || opts.Linguistic) {
		logger.Warn("Linguistic analysis unavailable, using lexical fallbacks", zap.Error(proseErr))
	}

	var scorer PolarityScorer
	if opts.Polarity && proseErr == nil {
		scorer = LexiconScorer{}
	}

	var source TermSource = LexicalTerms{}
	if opts.Linguistic && proseErr == nil {
		source = ProseTerms{}
	}

	topN := opts.KeywordsTop
	if topN <= 0 {
		topN = DefaultKeywordsTop
	}

	logger.Info("NLP analyzer initialized",
		zap.Bool("polarity", scorer != nil),
		zap.Bool("linguistic", opts.Linguistic && proseErr == nil),
		zap.Int("keywords_top", topN),
	)

	return &Analyzer{
		priority:  NewPriorityDetector(UrgentKeywords),
		sentiment: NewSentimentLabeler(scorer),
		keywords:  NewKeywordExtractor(source),
		topN:      topN,
	}
}

func (a *Analyzer) Priority(text string) Priority {
	return a.priority.Detect(text)
}

func (a *Analyzer) Sentiment(text string) Sentiment {
	return a.sentiment.Label(text)
}

func (a *Analyzer) Keywords(text string) []string {
	return a.keywords.Extract(text, a.topN)
}

func (a *Analyzer) Classify(text string, categories catalog.Table) Result {
	return Result{
		Priority:          a.Priority(text),
		Sentiment:         a.Sentiment(text),
		Keywords:          a.Keywords(text),
		SuggestedCategory: SuggestCategory(text, categories),
	}
}

func probeProse() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prose panicked: %v", r)
		}
	}()

	doc, err := prose.NewDocument("The library room is clean.")
	if err != nil {
		return err
	}
	if len(doc.Tokens()) == 0 {
		return errors.New("prose produced no tokens")
	}
	return nil
}

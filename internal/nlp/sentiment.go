package nlp

import (
	"strings"

	"go.uber.org/zap"

	"github.com/campus-buddy/backend/pkg/logger"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// polarityThreshold separates Neutral from the two polar labels.
const polarityThreshold = 0.1

var (
	PositiveKeywords = []string{"good", "great", "satisfied", "happy", "excellent", "resolved"}
	NegativeKeywords = []string{
		"bad", "poor", "angry", "upset", "problem", "not", "never",
		"complaint", "frustrat", "issue", "hate",
	}
)

// PolarityScorer returns a polarity in [-1, 1] for text.
type PolarityScorer interface {
	Polarity(text string) (float64, error)
}

// SentimentLabeler prefers its PolarityScorer and falls back to a signed
// keyword count when the scorer is absent or fails. It never returns an
// error.
type SentimentLabeler struct {
	scorer   PolarityScorer
	positive *keywordSet
	negative *keywordSet
}

// NewSentimentLabeler builds a labeler. A nil scorer selects the keyword
// heuristic permanently.
func NewSentimentLabeler(scorer PolarityScorer) *SentimentLabeler {
	return &SentimentLabeler{
		scorer:   scorer,
		positive: newKeywordSet(PositiveKeywords),
		negative: newKeywordSet(NegativeKeywords),
	}
}

func (l *SentimentLabeler) Label(text string) Sentiment {
	t := strings.TrimSpace(text)
	if t == "" {
		return SentimentNeutral
	}

	if l.scorer != nil {
		polarity, err := l.scorer.Polarity(t)
		if err == nil {
			return labelForPolarity(polarity)
		}
		logger.Debug("Polarity scorer failed, using keyword heuristic", zap.Error(err))
	}

	return labelForScore(l.keywordScore(t))
}

// keywordScore adds one per positive keyword present and subtracts one per
// negative keyword present. Repeats of a keyword count once.
func (l *SentimentLabeler) keywordScore(text string) int {
	return l.positive.count(text) - l.negative.count(text)
}

func labelForPolarity(p float64) Sentiment {
	switch {
	case p > polarityThreshold:
		return SentimentPositive
	case p < -polarityThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func labelForScore(score int) Sentiment {
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

package nlp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

var errNoTokens = errors.New("no tokens")

// valence is a small opinion lexicon on a [-1, 1] scale, tuned for
// complaint and campus vocabulary.
var valence = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.6, "awesome": 1.0,
	"happy": 0.8, "satisfied": 0.5, "pleased": 0.5, "helpful": 0.5, "clean": 0.37,
	"nice": 0.6, "quick": 0.33, "fast": 0.2, "resolved": 0.4, "thanks": 0.2,
	"thank": 0.2, "love": 0.5, "friendly": 0.4, "fine": 0.4, "comfortable": 0.4,
	"working": 0.1, "fixed": 0.3, "polite": 0.3, "better": 0.5, "best": 1.0,
	"bad": -0.7, "terrible": -1.0, "awful": -1.0, "horrible": -1.0, "poor": -0.4,
	"worst": -1.0, "worse": -0.4, "angry": -0.5, "upset": -0.5, "sad": -0.5,
	"dirty": -0.6, "broken": -0.4, "slow": -0.3, "late": -0.3, "rude": -0.6,
	"unsafe": -0.5, "dangerous": -0.6, "hate": -0.8, "frustrated": -0.7,
	"frustrating": -0.7, "annoying": -0.8, "disappointed": -0.75, "unfair": -0.5,
	"useless": -0.5, "stressful": -0.5, "noisy": -0.3, "smelly": -0.5,
	"leaking": -0.3, "unhygienic": -0.6, "harassed": -0.7, "scared": -0.6,
	"problem": -0.3, "issue": -0.2, "unavailable": -0.3, "missing": -0.2,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "n't": true, "nothing": true,
	"hardly": true, "neither": true, "nor": true, "without": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "so": 1.2, "too": 1.2,
	"highly": 1.3, "totally": 1.3, "completely": 1.3,
}

// LexiconScorer averages lexicon valences over prose tokens. A negator up to
// two tokens before a scored word flips and halves it; an intensifier right
// before it scales it.
type LexiconScorer struct{}

func (LexiconScorer) Polarity(text string) (float64, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return 0, fmt.Errorf("failed to tokenize: %w", err)
	}

	tokens := doc.Tokens()
	if len(tokens) == 0 {
		return 0, errNoTokens
	}

	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = strings.ToLower(tok.Text)
	}

	var sum float64
	var scored int
	for i, w := range words {
		v, ok := valence[w]
		if !ok {
			continue
		}
		if i > 0 {
			if m, ok := intensifiers[words[i-1]]; ok {
				v *= m
			}
		}
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if negators[words[j]] {
				v *= -0.5
				break
			}
		}
		sum += clamp(v)
		scored++
	}

	if scored == 0 {
		return 0, nil
	}
	return clamp(sum / float64(scored)), nil
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

package engine

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Weights for the spam heuristic. The score is the clamped sum of the
// matched-term, URL and shouting contributions.
const (
	termWeight   = 0.08
	urlWeight    = 0.05
	capsWeight   = 0.4
	maxSpamScore = 1.0
)

var spamTerms = []string{
	"free", "win", "winner", "prize", "urgent", "guarantee", "act now",
	"risk-free", "100%", "credit", "loan", "cash", "$$$", "viagra",
}

var (
	spamPatterns = compileTermPatterns(spamTerms)
	urlPattern   = regexp.MustCompile(`https?://`)
)

func compileTermPatterns(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return patterns
}

// AnalyzeSpam scores arbitrary text for spam risk in [0,1]. The score
// is deterministic for a given input; empty text is exactly 0.
func AnalyzeSpam(text string) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	termHits := 0
	for _, pattern := range spamPatterns {
		if pattern.MatchString(lower) {
			termHits++
		}
	}

	urlCount := len(urlPattern.FindAllStringIndex(text, -1))

	upper, alpha := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			alpha++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	capsRatio := 0.0
	if alpha > 0 {
		capsRatio = float64(upper) / float64(alpha)
	}

	score := float64(termHits)*termWeight + float64(urlCount)*urlWeight + capsRatio*capsWeight
	return round3(math.Min(maxSpamScore, score))
}

// SendingPattern maps a template-level spam score to volume and jitter
// multipliers: riskier templates send less, with more timing spread.
func SendingPattern(spamScore float64) (volumeMul, jitterMul float64) {
	switch {
	case spamScore < 0.2:
		return 1.0, 1.0
	case spamScore < 0.4:
		return 0.9, 1.1
	case spamScore < 0.6:
		return 0.8, 1.25
	default:
		return 0.6, 1.5
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Labels returned by sentiment classifiers
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

const (
	MinEcoScore = 0
	MaxEcoScore = 100
)

var (
	outOfHundredPattern  = regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d+)?)\s*(?:/|out\s+of)\s*100\b`)
	labelledScorePattern = regexp.MustCompile(`(?i)(?:eco[-\s]?score|score|rating|rated)\s*(?:of|is|=|:)?\s*\**\s*(\d{1,3}(?:\.\d+)?)(?:\**\s*(?:/|out\s+of)\s*(\d+))?`)
)

// ExtractEcoScore derives a 0-100 eco-score from free model output.
// "NN/100" and "NN out of 100" win over labelled forms like "Score: NN".
// Labelled scores on another scale, such as "Rating: 3/10", are ignored.
func ExtractEcoScore(text string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{outOfHundredPattern, labelledScorePattern} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if len(m) > 2 && m[2] != "" && m[2] != "100" {
				continue
			}
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			return clampScore(int(math.Round(v))), true
		}
	}
	return 0, false
}

// ScoreFromSentiment rescales a classifier confidence to a 0-100 eco-score.
// A positive label scores its confidence; any other label scores the inverse.
func ScoreFromSentiment(label string, confidence float64) int {
	confidence = math.Max(0, math.Min(1, confidence))
	if !strings.EqualFold(label, LabelPositive) {
		confidence = 1 - confidence
	}
	return clampScore(int(math.Round(confidence * 100)))
}

func clampScore(v int) int {
	if v < MinEcoScore {
		return MinEcoScore
	}
	if v > MaxEcoScore {
		return MaxEcoScore
	}
	return v
}

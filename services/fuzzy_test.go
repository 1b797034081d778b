package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinRatio(t *testing.T) {
	assert.InDelta(t, 1.0, LevenshteinRatio("Harry Potter", "harry potter"), 1e-9)
	assert.Zero(t, LevenshteinRatio("", "harry potter"))

	ratio := LevenshteinRatio("harry potter", "harry poter")
	assert.Greater(t, ratio, 0.9)
	assert.Less(t, ratio, 1.0)
}

func TestTokenSetRatioIgnoresWordOrder(t *testing.T) {
	assert.InDelta(t, 1.0, TokenSetRatio("the great gatsby", "gatsby the great"), 1e-9)
	assert.InDelta(t, 2.0/3.0, TokenSetRatio("great gatsby", "great expectations gatsby"), 1e-9)
	assert.Zero(t, TokenSetRatio("moby dick", "star wars"))
}

func TestPartialRatioFindsSubstrings(t *testing.T) {
	assert.InDelta(t, 1.0, PartialRatio("gatsby", "the great gatsby"), 1e-9)
	assert.Zero(t, PartialRatio("", "anything"))
}

func TestCombinedFuzzyScoreRange(t *testing.T) {
	pairs := [][2]string{
		{"harry potter", "harry poter"},
		{"the great gatsby", "gatsby"},
		{"moby dick", "star wars"},
		{"same text", "same text"},
	}
	for _, p := range pairs {
		score := CombinedFuzzyScore(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0.0, "pair %v", p)
		assert.LessOrEqual(t, score, 1.0, "pair %v", p)
	}
	assert.InDelta(t, 1.0, CombinedFuzzyScore("same text", "same text"), 1e-9)
}

func TestCombinedFuzzyScoreOrdersByCloseness(t *testing.T) {
	near := CombinedFuzzyScore("the great gatsby", "the great gatsbee")
	far := CombinedFuzzyScore("the great gatsby", "war and peace")
	assert.Greater(t, near, far)
}

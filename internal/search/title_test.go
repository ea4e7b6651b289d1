package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTitle_AllTermsPresentScoresOne(t *testing.T) {
	score, present := scoreTitle([]string{"api", "gateway"}, "API Gateway Patterns")
	assert.True(t, present)
	assert.Equal(t, 1.0, score)
}

func TestScoreTitle_PartialMatchScoresFraction(t *testing.T) {
	score, present := scoreTitle([]string{"api", "database"}, "API Gateway Patterns")
	assert.True(t, present)
	assert.Equal(t, 0.5, score)
}

func TestScoreTitle_EmptyTitleIsAbsent(t *testing.T) {
	score, present := scoreTitle([]string{"api"}, "")
	assert.False(t, present)
	assert.Equal(t, 0.0, score)
}

func TestScoreTitle_NoQueryTermsIsPresentButZeroContribution(t *testing.T) {
	score, present := scoreTitle(nil, "API Gateway Patterns")
	assert.True(t, present)
	assert.Equal(t, 0.0, score)
}

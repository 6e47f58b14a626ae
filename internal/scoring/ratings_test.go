package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmptySet(t *testing.T) {
	sum := Summarize(nil)

	assert.Equal(t, 0.0, sum.AverageRating)
	assert.Equal(t, 0, sum.TotalReviews)
	assert.Equal(t, Breakdown{}, sum.Breakdown)
}

func TestSummarizeOverallRounding(t *testing.T) {
	// overall ratings 5, 4, 3 -> mean 4.0 exactly
	sum := Summarize([]Ratings{
		{Overall: 5, Academics: 4, CampusLife: 4, Facilities: 4, Location: 4, Value: 4},
		{Overall: 4, Academics: 3, CampusLife: 3, Facilities: 3, Location: 3, Value: 3},
		{Overall: 3, Academics: 2, CampusLife: 2, Facilities: 2, Location: 2, Value: 2},
	})

	assert.Equal(t, 4.0, sum.AverageRating)
	assert.Equal(t, 3, sum.TotalReviews)
}

func TestSummarizeRoundsOnlyOverall(t *testing.T) {
	// overall mean 4.333... rounds to 4.3, academics mean stays unrounded
	sum := Summarize([]Ratings{
		{Overall: 5, Academics: 5},
		{Overall: 4, Academics: 4},
		{Overall: 4, Academics: 4},
	})

	assert.Equal(t, 4.3, sum.AverageRating)
	assert.InDelta(t, 13.0/3.0, sum.Breakdown.Academics, 1e-12)
}

func TestSummarizeSingleReview(t *testing.T) {
	sum := Summarize([]Ratings{
		{Overall: 5, Academics: 4, CampusLife: 3, Facilities: 2, Location: 1, Value: 5},
	})

	assert.Equal(t, 5.0, sum.AverageRating)
	assert.Equal(t, 1, sum.TotalReviews)
	assert.Equal(t, 4.0, sum.Breakdown.Academics)
	assert.Equal(t, 3.0, sum.Breakdown.CampusLife)
	assert.Equal(t, 2.0, sum.Breakdown.Facilities)
	assert.Equal(t, 1.0, sum.Breakdown.Location)
	assert.Equal(t, 5.0, sum.Breakdown.Value)
}

func TestSummarizeIdempotent(t *testing.T) {
	ratings := []Ratings{
		{Overall: 4, Academics: 3, CampusLife: 5, Facilities: 4, Location: 2, Value: 3},
		{Overall: 2, Academics: 5, CampusLife: 1, Facilities: 3, Location: 4, Value: 4},
	}

	first := Summarize(ratings)
	second := Summarize(ratings)

	require.Equal(t, first, second)
}

func TestRatingsMean(t *testing.T) {
	r := Ratings{Overall: 5, Academics: 5, CampusLife: 5, Facilities: 5, Location: 5, Value: 5}
	assert.Equal(t, 5.0, r.Mean())

	r = Ratings{Overall: 1, Academics: 2, CampusLife: 3, Facilities: 4, Location: 5, Value: 3}
	assert.Equal(t, 3.0, r.Mean())
}

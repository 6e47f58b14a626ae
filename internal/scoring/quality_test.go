package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allFives() Ratings {
	return Ratings{Overall: 5, Academics: 5, CampusLife: 5, Facilities: 5, Location: 5, Value: 5}
}

func TestScoreWithCappedBoosts(t *testing.T) {
	// all 5s, 25 helpful votes (boost capped at 2.0), 300-char content,
	// 3 pros + 1 con (content score capped at 1.0) -> 5.0 + 2.0 + 1.0 = 8.0
	r := ReviewSnapshot{
		Ratings:        allFives(),
		Content:        strings.Repeat("x", 300),
		Pros:           []string{"faculty", "library", "campus"},
		Cons:           []string{"parking"},
		WouldRecommend: true,
		HelpfulCount:   25,
	}

	got := Score(r)
	assert.Equal(t, 8.0, got.Score)
	assert.Equal(t, SentimentPositive, got.Sentiment)
}

func TestScoreMonotonicInHelpfulVotes(t *testing.T) {
	base := ReviewSnapshot{
		Ratings: Ratings{Overall: 3, Academics: 3, CampusLife: 3, Facilities: 3, Location: 3, Value: 3},
		Content: strings.Repeat("x", 100),
	}

	prev := -1.0
	for votes := 0; votes <= 30; votes++ {
		r := base
		r.HelpfulCount = votes
		got := Score(r).Score
		assert.GreaterOrEqual(t, got, prev, "score dropped at %d helpful votes", votes)
		prev = got
	}

	// capped: 20 votes and 30 votes score identically
	capped := base
	capped.HelpfulCount = 20
	over := base
	over.HelpfulCount = 30
	assert.Equal(t, Score(capped).Score, Score(over).Score)
}

func TestScoreMonotonicInReports(t *testing.T) {
	base := ReviewSnapshot{
		Ratings: Ratings{Overall: 3, Academics: 3, CampusLife: 3, Facilities: 3, Location: 3, Value: 3},
		Content: strings.Repeat("x", 100),
	}

	prev := 100.0
	for reports := 0; reports <= 10; reports++ {
		r := base
		r.ReportCount = reports
		got := Score(r).Score
		assert.LessOrEqual(t, got, prev, "score rose at %d reports", reports)
		prev = got
	}

	// penalty capped at -3.0
	capped := base
	capped.ReportCount = 6
	over := base
	over.ReportCount = 50
	assert.Equal(t, Score(capped).Score, Score(over).Score)
}

func TestScoreNeverNegative(t *testing.T) {
	r := ReviewSnapshot{
		Ratings:     Ratings{Overall: 1, Academics: 1, CampusLife: 1, Facilities: 1, Location: 1, Value: 1},
		ReportCount: 100,
	}

	assert.Equal(t, 0.0, Score(r).Score)
}

func TestScoreMissingOptionalFields(t *testing.T) {
	// nil pros/cons and zero counters must score, not blow up
	r := ReviewSnapshot{Ratings: allFives()}
	got := Score(r)
	assert.Equal(t, 5.0, got.Score)
}

func TestSentimentPositive(t *testing.T) {
	r := ReviewSnapshot{
		Ratings:        allFives(),
		WouldRecommend: true,
		Pros:           []string{"a", "b"},
		Cons:           []string{"c"},
	}
	assert.Equal(t, SentimentPositive, Score(r).Sentiment)
}

func TestSentimentNegative(t *testing.T) {
	r := ReviewSnapshot{
		Ratings:        Ratings{Overall: 2, Academics: 2, CampusLife: 2, Facilities: 2, Location: 1, Value: 1},
		WouldRecommend: false,
		Cons:           []string{"a", "b"},
	}
	assert.Equal(t, SentimentNegative, Score(r).Sentiment)
}

func TestSentimentNeutralWhenRulesConflict(t *testing.T) {
	// high ratings but no recommendation -> neither rule matches
	r := ReviewSnapshot{
		Ratings:        allFives(),
		WouldRecommend: false,
		Pros:           []string{"a", "b"},
	}
	assert.Equal(t, SentimentNeutral, Score(r).Sentiment)

	// low ratings but pros outweigh cons
	r = ReviewSnapshot{
		Ratings: Ratings{Overall: 1, Academics: 1, CampusLife: 1, Facilities: 1, Location: 1, Value: 1},
		Pros:    []string{"a", "b"},
		Cons:    []string{"c"},
	}
	assert.Equal(t, SentimentNeutral, Score(r).Sentiment)
}

func TestScoreDeterministic(t *testing.T) {
	r := ReviewSnapshot{
		Ratings:        Ratings{Overall: 4, Academics: 3, CampusLife: 4, Facilities: 5, Location: 2, Value: 3},
		Content:        strings.Repeat("y", 250),
		Pros:           []string{"a"},
		Cons:           []string{"b", "c"},
		WouldRecommend: true,
		HelpfulCount:   7,
		ReportCount:    1,
	}

	assert.Equal(t, Score(r), Score(r))
}

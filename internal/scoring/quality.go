package scoring

import "math"

// Sentiment is the coarse label shown next to a review in listings.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ReviewSnapshot is the read-only view of a review the scorer works on.
// Missing optional parts (no pros, no voters yet) are just zero values.
type ReviewSnapshot struct {
	Ratings        Ratings
	Title          string
	Content        string
	Pros           []string
	Cons           []string
	WouldRecommend bool
	HelpfulCount   int
	ReportCount    int
}

// QualityResult pairs the composite score with the sentiment label.
type QualityResult struct {
	Score     float64   `json:"quality_score"`
	Sentiment Sentiment `json:"sentiment"`
}

const (
	helpfulBoostPerVote = 0.1
	helpfulBoostCap     = 2.0
	reportPenaltyPer    = 0.5
	reportPenaltyCap    = 3.0
)

// Score computes the composite quality score and sentiment for one review.
// The score combines a weighted rating sum (weights total 1.0, so the term
// stays in [1,5]), an engagement boost capped at +2.0, a report penalty
// capped at -3.0, and a content-effort term capped at +1.0. The result is
// floored at zero and rounded to one decimal place.
func Score(r ReviewSnapshot) QualityResult {
	weightedRatingSum := 0.3*float64(r.Ratings.Overall) +
		0.2*float64(r.Ratings.Academics) +
		0.15*float64(r.Ratings.CampusLife) +
		0.15*float64(r.Ratings.Facilities) +
		0.1*float64(r.Ratings.Location) +
		0.1*float64(r.Ratings.Value)

	helpfulBoost := math.Min(float64(r.HelpfulCount)*helpfulBoostPerVote, helpfulBoostCap)
	reportPenalty := math.Min(float64(r.ReportCount)*reportPenaltyPer, reportPenaltyCap)

	contentScore := math.Min(
		float64(len(r.Content))/200.0+float64(len(r.Pros)+len(r.Cons))*0.2,
		1.0,
	)

	score := weightedRatingSum + helpfulBoost - reportPenalty + contentScore
	score = math.Max(0, score)
	score = math.Round(score*10) / 10

	return QualityResult{
		Score:     score,
		Sentiment: sentiment(r),
	}
}

// sentiment classifies a review. Rules are ordered; first match wins.
func sentiment(r ReviewSnapshot) Sentiment {
	mean := r.Ratings.Mean()

	switch {
	case mean >= 4 && r.WouldRecommend && len(r.Pros) > len(r.Cons):
		return SentimentPositive
	case mean <= 2 && !r.WouldRecommend && len(r.Cons) > len(r.Pros):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Package scoring holds the rating aggregation math for colleges and the
// per-review quality/content heuristics. Everything here is pure: no I/O,
// no clocks, no state. The store layer feeds it review snapshots and writes
// whatever it computes.
package scoring

import "math"

// Ratings are the six 1-5 sub-scores a student gives a college.
type Ratings struct {
	Overall    int `json:"overall"`
	Academics  int `json:"academics"`
	CampusLife int `json:"campus_life"`
	Facilities int `json:"facilities"`
	Location   int `json:"location"`
	Value      int `json:"value"`
}

// Mean is the average of all six sub-scores.
func (r Ratings) Mean() float64 {
	return float64(r.Overall+r.Academics+r.CampusLife+r.Facilities+r.Location+r.Value) / 6.0
}

// Breakdown holds the per-category means across a college's active reviews.
// Values stay unrounded; only the overall average gets rounded for display.
type Breakdown struct {
	Academics  float64 `json:"academics"`
	CampusLife float64 `json:"campus_life"`
	Facilities float64 `json:"facilities"`
	Location   float64 `json:"location"`
	Value      float64 `json:"value"`
}

// RatingSummary is the denormalized aggregate stored on a college row.
// It is owned by the aggregator: nothing else writes these fields.
type RatingSummary struct {
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	Breakdown     Breakdown `json:"rating_breakdown"`
}

// Summarize computes a college's rating summary from its active reviews.
// An empty set produces the zero summary (average 0, every category 0),
// never NaN. The overall average is rounded to one decimal place; the
// category means are kept at full precision.
func Summarize(ratings []Ratings) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}

	var overall, academics, campusLife, facilities, location, value int
	for _, r := range ratings {
		overall += r.Overall
		academics += r.Academics
		campusLife += r.CampusLife
		facilities += r.Facilities
		location += r.Location
		value += r.Value
	}

	n := float64(len(ratings))

	return RatingSummary{
		AverageRating: math.Round(float64(overall)/n*10) / 10,
		TotalReviews:  len(ratings),
		Breakdown: Breakdown{
			Academics:  float64(academics) / n,
			CampusLife: float64(campusLife) / n,
			Facilities: float64(facilities) / n,
			Location:   float64(location) / n,
			Value:      float64(value) / n,
		},
	}
}

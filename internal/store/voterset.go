package store

import (
	"encoding/json"
	"slices"
)

// VoterSet is the set of user IDs behind a review counter (helpful votes,
// reports). The public count is always derived from the set, so the two can
// never drift apart. Maps straight onto a Postgres bigint[] column.
type VoterSet []int64

func (s VoterSet) Count() int {
	return len(s)
}

func (s VoterSet) Has(userID int64) bool {
	return slices.Contains(s, userID)
}

// MarshalJSON exposes only the derived count; voter identities stay private.
func (s VoterSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count int `json:"count"`
	}{Count: len(s)})
}

package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoterSetCountDerivedFromMembers(t *testing.T) {
	var s VoterSet
	assert.Equal(t, 0, s.Count())

	s = VoterSet{10, 20, 30}
	assert.Equal(t, 3, s.Count())
	assert.True(t, s.Has(20))
	assert.False(t, s.Has(99))
}

func TestVoterSetJSONHidesVoters(t *testing.T) {
	s := VoterSet{1, 2, 3}

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":3}`, string(out))
}

func TestVoterSetJSONEmpty(t *testing.T) {
	var s VoterSet

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0}`, string(out))
}

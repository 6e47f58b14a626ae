package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{ApplicationSubmitted, ApplicationUnderReview, true},
		{ApplicationUnderReview, ApplicationAccepted, true},
		{ApplicationUnderReview, ApplicationRejected, true},
		{ApplicationSubmitted, ApplicationAccepted, false},
		{ApplicationSubmitted, ApplicationRejected, false},
		{ApplicationAccepted, ApplicationUnderReview, false},
		{ApplicationRejected, ApplicationUnderReview, false},
		{ApplicationWithdrawn, ApplicationUnderReview, false},
		{ApplicationUnderReview, ApplicationSubmitted, false},
		{ApplicationUnderReview, ApplicationWithdrawn, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.ok, canTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsOpenStatus(t *testing.T) {
	assert.True(t, isOpenStatus(ApplicationSubmitted))
	assert.True(t, isOpenStatus(ApplicationUnderReview))
	assert.False(t, isOpenStatus(ApplicationAccepted))
	assert.False(t, isOpenStatus(ApplicationRejected))
	assert.False(t, isOpenStatus(ApplicationWithdrawn))
}

func TestReferenceCode(t *testing.T) {
	code, err := referenceCode(42)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "APP-"))
	assert.GreaterOrEqual(t, len(code), len("APP-")+8)

	again, err := referenceCode(42)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	other, err := referenceCode(43)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

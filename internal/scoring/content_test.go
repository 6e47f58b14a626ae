package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordsOfLen builds content with exactly n tokens longer than two characters.
func wordsOfLen(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestValidateCleanContent(t *testing.T) {
	p := ContentPolicy{}
	check := p.Validate("Great engineering school", wordsOfLen(25))

	assert.True(t, check.IsValid)
	assert.Empty(t, check.Errors)
}

func TestValidateRepeatedCharacterSpam(t *testing.T) {
	p := ContentPolicy{}
	// repeated run fires regardless of word count
	check := p.Validate("ok title", "AAAAAA this is great "+wordsOfLen(25))

	assert.False(t, check.IsValid)
	assert.Contains(t, check.Errors, msgSpam)
}

func TestValidateRepeatedRunInTitle(t *testing.T) {
	p := ContentPolicy{}
	check := p.Validate("loooooved it", wordsOfLen(25))

	assert.False(t, check.IsValid)
	assert.Contains(t, check.Errors, msgSpam)
}

func TestValidateAllCapsSpam(t *testing.T) {
	p := ContentPolicy{}
	check := p.Validate("BEST COLLEGE EVER DO NOT MISS!", wordsOfLen(25))

	assert.False(t, check.IsValid)
	assert.Contains(t, check.Errors, msgSpam)
}

func TestValidatePromotionalSpam(t *testing.T) {
	p := ContentPolicy{}
	check := p.Validate("nice place", "Big discount available now for everyone "+wordsOfLen(25))

	assert.False(t, check.IsValid)
	assert.Contains(t, check.Errors, msgSpam)
}

func TestValidateDuplicateSpamMessagesKept(t *testing.T) {
	p := ContentPolicy{}
	// trips both the repeated-run and the promo rule
	check := p.Validate("best deal click hereeeeee", wordsOfLen(25))

	require.False(t, check.IsValid)
	spamCount := 0
	for _, e := range check.Errors {
		if e == msgSpam {
			spamCount++
		}
	}
	assert.Equal(t, 2, spamCount)
}

func TestValidateWordCountBoundary(t *testing.T) {
	p := ContentPolicy{}

	check := p.Validate("decent title", wordsOfLen(19))
	assert.False(t, check.IsValid)
	assert.Contains(t, check.Errors, msgTooFewWords)

	check = p.Validate("decent title", wordsOfLen(20))
	assert.True(t, check.IsValid)
}

func TestValidateShortTokensDoNotCount(t *testing.T) {
	p := ContentPolicy{}
	// twenty tokens, all too short to be meaningful
	check := p.Validate("decent title", strings.TrimSpace(strings.Repeat("an ", 20)))

	assert.False(t, check.IsValid)
	assert.Contains(t, check.Errors, msgTooFewWords)
}

func TestValidateBlockedWords(t *testing.T) {
	p := ContentPolicy{BlockedWords: []string{"scam", "fraud"}}
	check := p.Validate("honest opinion", "this place is a SCAM honestly "+wordsOfLen(25))

	assert.False(t, check.IsValid)
	assert.Contains(t, check.Errors, msgInappropriate)
}

func TestValidateBlockedWordInTitle(t *testing.T) {
	p := ContentPolicy{BlockedWords: []string{"fraud"}}
	check := p.Validate("total Fraud", wordsOfLen(25))

	assert.False(t, check.IsValid)
	assert.Contains(t, check.Errors, msgInappropriate)
}

func TestValidateErrorOrder(t *testing.T) {
	p := ContentPolicy{BlockedWords: []string{"scam"}}
	// repeated run + too few words + blocked word, in rule order
	check := p.Validate("wooooow", "scam scam scam")

	require.Equal(t, []string{msgSpam, msgTooFewWords, msgInappropriate}, check.Errors)
}

func TestValidateNeverPanicsOnEmpty(t *testing.T) {
	p := ContentPolicy{}
	check := p.Validate("", "")

	assert.False(t, check.IsValid)
	assert.NotEmpty(t, check.Errors)
}

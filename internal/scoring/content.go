package scoring

import (
	"regexp"
	"strings"
)

const (
	msgSpam          = "Content appears to be spam"
	msgTooFewWords   = "Review must contain at least 20 meaningful words"
	msgInappropriate = "Review contains inappropriate language"
)

const minMeaningfulWords = 20

var (
	// Shouting: a stretch of capitals, spaces and bangs at least 20 long.
	allCapsPattern = regexp.MustCompile(`[A-Z\s!]{20,}`)
	// Promotional phrasing: sales word within ~20 chars of an urgency word.
	promoPattern = regexp.MustCompile(`(?i)(buy|sell|cheap|discount|offer|deal).{0,20}(now|today|click)`)
)

// ContentCheck is the validator's verdict. Errors keeps the order the rules
// ran in; duplicates are possible when several spam patterns fire (kept as-is
// rather than deduplicated, so callers can count triggered rules).
type ContentCheck struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// ContentPolicy holds the tunable parts of review content validation.
// BlockedWords are matched as case-insensitive substrings.
type ContentPolicy struct {
	BlockedWords []string
}

// Validate runs the heuristic checks over a review's title and content, in a
// fixed order: repeated-character spam, all-caps spam, promotional-phrase
// spam, minimum word count, blocked words. It never fails; it only reports.
// Callers decide whether a bad verdict blocks persistence or just flags.
func (p ContentPolicy) Validate(title, content string) ContentCheck {
	var errs []string

	if hasRepeatedRun(title, 5) || hasRepeatedRun(content, 5) {
		errs = append(errs, msgSpam)
	}
	if allCapsPattern.MatchString(title) || allCapsPattern.MatchString(content) {
		errs = append(errs, msgSpam)
	}
	if promoPattern.MatchString(title) || promoPattern.MatchString(content) {
		errs = append(errs, msgSpam)
	}

	if countMeaningfulWords(content) < minMeaningfulWords {
		errs = append(errs, msgTooFewWords)
	}

	combined := strings.ToLower(title + " " + content)
	for _, word := range p.BlockedWords {
		if word == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(word)) {
			errs = append(errs, msgInappropriate)
			break
		}
	}

	return ContentCheck{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// hasRepeatedRun reports whether s contains the same rune n or more times in
// a row. Done by hand since RE2 has no backreferences.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// countMeaningfulWords tokenizes on whitespace and counts tokens longer than
// two characters, so filler like "a", "is", "to" doesn't pad a review out.
func countMeaningfulWords(content string) int {
	count := 0
	for _, tok := range strings.Fields(content) {
		if len(tok) > 2 {
			count++
		}
	}
	return count
}

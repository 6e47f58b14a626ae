package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		assert.True(t, ok, "request %d should pass", i+1)
	}
}

func TestDenyOverLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(2, time.Minute)

	rl.Allow("10.0.0.2")
	rl.Allow("10.0.0.2")

	ok, retry := rl.Allow("10.0.0.2")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)
}

func TestClientsCountedSeparately(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute)

	ok, _ := rl.Allow("10.0.0.3")
	assert.True(t, ok)

	ok, _ = rl.Allow("10.0.0.4")
	assert.True(t, ok)

	ok, _ = rl.Allow("10.0.0.3")
	assert.False(t, ok)
}

func TestWindowResets(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 30*time.Millisecond)

	ok, _ := rl.Allow("10.0.0.5")
	assert.True(t, ok)

	ok, _ = rl.Allow("10.0.0.5")
	assert.False(t, ok)

	time.Sleep(60 * time.Millisecond)

	ok, _ = rl.Allow("10.0.0.5")
	assert.True(t, ok)
}

package jitter

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	base := 50 * time.Millisecond
	max := time.Second

	assert.Equal(t, base, Backoff(base, max, 0))
	assert.Equal(t, 100*time.Millisecond, Backoff(base, max, 1))
	assert.Equal(t, 400*time.Millisecond, Backoff(base, max, 3))
	assert.Equal(t, max, Backoff(base, max, 10))
	assert.Equal(t, max, Backoff(2*time.Second, max, 0))
}

func TestDurationBounds(t *testing.T) {
	d := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		got := Duration(d, DefaultJitter)
		assert.GreaterOrEqual(t, got, d)
		assert.LessOrEqual(t, got, d+d/2)
	}
}

func TestDurationWithRandIsDeterministic(t *testing.T) {
	d := time.Second
	a := DurationWithRand(d, DefaultJitter, rand.New(rand.NewSource(1)))
	b := DurationWithRand(d, DefaultJitter, rand.New(rand.NewSource(1)))
	assert.Equal(t, a, b)
}

func TestZeroJitter(t *testing.T) {
	assert.Equal(t, time.Second, Duration(time.Second, 0))
}

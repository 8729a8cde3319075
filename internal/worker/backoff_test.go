package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitter(t *testing.T) {
	for range 1000 {
		v := jitter(100, 0.15, 0.15)
		assert.GreaterOrEqual(t, v, 85.0)
		assert.LessOrEqual(t, v, 115.0)
	}
	// некорректные проценты заменяются на 15%.
	v := jitter(100, -1, 0.5)
	assert.GreaterOrEqual(t, v, 85.0)
	assert.LessOrEqual(t, v, 115.0)
}

func TestBackoff(t *testing.T) {
	cases := []struct {
		attempt uint
		want    time.Duration
	}{
		{attempt: 0, want: time.Second},
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 4, want: 8 * time.Second},
		{attempt: 20, want: 30 * time.Second},
	}
	for _, tt := range cases {
		got := Backoff(time.Second, 30*time.Second, tt.attempt)
		assert.InDelta(t, float64(tt.want), float64(got), float64(tt.want)*0.15+1, "attempt %d", tt.attempt)
	}
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, Sleep(ctx, time.Hour))
	assert.True(t, Sleep(context.Background(), time.Millisecond))
}

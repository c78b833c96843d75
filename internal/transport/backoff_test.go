package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_DelaysAreNonDecreasingUpToCap(t *testing.T) {
	backoff := NewBackoff(time.Second, 30*time.Second, time.Minute)

	want := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}

	var got []time.Duration
	for range want {
		backoff.Failure()
		got = append(got, backoff.NextDelay())
	}

	assert.Equal(t, want, got)
}

func TestBackoff_ResetsAfterStableConnection(t *testing.T) {
	backoff := NewBackoff(time.Second, 30*time.Second, time.Minute)

	for i := 0; i < 4; i++ {
		backoff.Failure()
	}
	assert.Equal(t, 8*time.Second, backoff.NextDelay())

	connectedAt := time.Now()
	backoff.Connected(connectedAt)
	backoff.Disconnected(connectedAt.Add(2 * time.Minute))

	assert.Equal(t, time.Second, backoff.NextDelay())
}

func TestBackoff_ShortLivedConnectionKeepsEscalating(t *testing.T) {
	backoff := NewBackoff(time.Second, 30*time.Second, time.Minute)

	backoff.Failure()
	backoff.Failure()
	assert.Equal(t, 2*time.Second, backoff.NextDelay())

	// соединение прожило меньше окна стабильности
	connectedAt := time.Now()
	backoff.Connected(connectedAt)
	backoff.Disconnected(connectedAt.Add(3 * time.Second))

	assert.Equal(t, 2*time.Second, backoff.NextDelay())

	backoff.Failure()
	assert.Equal(t, 4*time.Second, backoff.NextDelay())
}

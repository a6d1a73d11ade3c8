package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errUpstream = errors.New("upstream down")

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("rpc", 3, time.Minute)

	for i := 0; i < 2; i++ {
		assert.True(t, b.Allow())
		b.Record(errUpstream)
	}
	assert.Equal(t, StateClosed, b.State())

	b.Record(errUpstream)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	b := New("rpc", 3, time.Minute)

	b.Record(errUpstream)
	b.Record(errUpstream)
	b.Record(nil)
	b.Record(errUpstream)
	b.Record(errUpstream)

	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	b := New("rpc", 1, 10*time.Millisecond)

	b.Record(errUpstream)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())

	time.Sleep(15 * time.Millisecond)

	// The first call after the cooldown is the probe.
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	b.Record(nil)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := New("rpc", 1, 10*time.Millisecond)

	b.Record(errUpstream)
	time.Sleep(15 * time.Millisecond)
	assert.True(t, b.Allow())

	b.Record(errUpstream)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwatch/hostwatch/internal/resilience"
)

var errDownstream = errors.New("downstream failed")

func failing() error { return errDownstream }
func succeeding() error { return nil }

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.Config{
		Name:         "test",
		MaxFailures:  3,
		ResetTimeout: time.Minute,
	})

	for i := 0; i < 3; i++ {
		err := cb.Execute(failing)
		assert.ErrorIs(t, err, errDownstream)
	}
	assert.Equal(t, resilience.StateOpen, cb.State())

	// Open breaker rejects without running the call
	err := cb.Execute(failing)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.Config{MaxFailures: 3, ResetTimeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))
	require.NoError(t, cb.Execute(succeeding))
	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))

	assert.Equal(t, resilience.StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenAfterResetTimeout(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.Config{
		MaxFailures:      1,
		ResetTimeout:     10 * time.Millisecond,
		HalfOpenRequired: 2,
	})

	require.Error(t, cb.Execute(failing))
	require.Equal(t, resilience.StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	// First probe moves the breaker to half-open
	require.NoError(t, cb.Execute(succeeding))
	assert.Equal(t, resilience.StateHalfOpen, cb.State())

	// Second success closes it
	require.NoError(t, cb.Execute(succeeding))
	assert.Equal(t, resilience.StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.Config{
		MaxFailures:      1,
		ResetTimeout:     10 * time.Millisecond,
		HalfOpenRequired: 2,
	})

	require.Error(t, cb.Execute(failing))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(failing))
	assert.Equal(t, resilience.StateOpen, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := resilience.NewCircuitBreaker(resilience.Config{MaxFailures: 1, ResetTimeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	require.Equal(t, resilience.StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, resilience.StateClosed, cb.State())
	assert.NoError(t, cb.Execute(succeeding))
}

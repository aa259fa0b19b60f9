package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(Settings{
		Name:                "s3",
		Timeout:             time.Minute,
		ConsecutiveFailures: 2,
		OnStateChange: func(name, from, to string) {
			transitions = append(transitions, from+"->"+to)
		},
	})
	failing := errors.New("upload failed")

	assert.ErrorIs(t, cb.Execute(func() error { return failing }), failing)
	assert.ErrorIs(t, cb.Execute(func() error { return failing }), failing)

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, "open", cb.State())
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "s3"})

	for i := 0; i < 10; i++ {
		assert.NoError(t, cb.Execute(func() error { return nil }))
	}
	assert.Equal(t, "closed", cb.State())
}

package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeReason string

func (r fakeReason) String() string { return string(r) }

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", Invalid("date", "cannot parse %q", "tomorrow"), ErrValidation},
		{"not found", NotFound("event", "42"), ErrNotFound},
		{"ineligible", &IneligibleError{Outcome: fakeReason("EventFull")}, ErrIneligible},
		{"remote", Remote("insert registration", context.DeadlineExceeded), ErrRemote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			for _, other := range []error{ErrValidation, ErrNotFound, ErrIneligible, ErrRemote} {
				if other != tt.sentinel {
					assert.False(t, errors.Is(wrapped, other), "unexpected match with %v", other)
				}
			}
		})
	}
}

func TestRemote_UnwrapsCause(t *testing.T) {
	err := Remote("list registrations", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, Remote("noop", nil))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, `event "7" not found`, NotFound("event", "7").Error())
	assert.Equal(t, "title: must be at least 2 characters", Invalid("title", "must be at least %d characters", 2).Error())
}

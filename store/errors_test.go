package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestRetryableAsFallback(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation", fmt.Errorf("%w: bad amount", ErrValidation), false},
		{"not found", fmt.Errorf("%w: user x", ErrNotFound), false},
		{"store unavailable sentinel", fmt.Errorf("%w: down", ErrStoreUnavailable), true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("tx: %w", context.DeadlineExceeded), true},
		{"insufficient privilege", &pq.Error{Code: "42501"}, true},
		{"bad password", &pq.Error{Code: "28P01"}, true},
		{"connection exception class", &pq.Error{Code: "08006"}, true},
		{"too many connections", &pq.Error{Code: "53300"}, true},
		{"internal error", &pq.Error{Code: "XX000"}, true},
		{"plain constraint violation", &pq.Error{Code: "23505"}, false},
		{"permission text", errors.New("permission denied for table household_state"), true},
		{"network text", errors.New("network is unreachable"), true},
		{"random error", errors.New("something else broke"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RetryableAsFallback(tc.err))
		})
	}
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, isSerializationFailure(&pq.Error{Code: "40001"}))
	assert.True(t, isSerializationFailure(&pq.Error{Code: "40P01"}))
	assert.False(t, isSerializationFailure(&pq.Error{Code: "23505"}))
	assert.False(t, isSerializationFailure(errors.New("boom")))
}

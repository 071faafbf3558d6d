package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventStatusAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  EventStatus
	}{
		{"no start date", nil, nil, EventUpcoming},
		{"starts in the future", &future, nil, EventUpcoming},
		{"started, no end", &past, nil, EventActive},
		{"started, ends later", &past, &future, EventActive},
		{"already ended", &past, &past, EventCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{StartDate: tt.start, EndDate: tt.end}
			assert.Equal(t, tt.want, e.StatusAt(now))
		})
	}
}

func TestAppError(t *testing.T) {
	t.Run("Error includes code and message", func(t *testing.T) {
		err := ErrNotFound("team", "t1")
		assert.Contains(t, err.Error(), "NOT_FOUND")
		assert.Contains(t, err.Error(), "team t1 not found")
	})

	t.Run("Unwrap exposes the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrUpstream("graphql unreachable", cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestFriendlyGraphQLMessage(t *testing.T) {
	tests := []struct {
		code string
		raw  string
		want string
	}{
		{"UNAUTHENTICATED", "JWT expired", "please log in to view this data"},
		{"FORBIDDEN", "row-level security violation", "you do not have permission to view this data"},
		{"INTERNAL_SERVER_ERROR", "something broke", "something broke"},
		{"", "plain message", "plain message"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FriendlyGraphQLMessage(tt.code, tt.raw), tt.code)
	}
}

package db

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Refused",
			err:      fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused"),
			expected: "connection refused to localhost:5432",
		},
		{
			name:     "Unknown host",
			err:      fmt.Errorf("lookup badhost: no such host"),
			expected: `cannot resolve host "localhost"`,
		},
		{
			name:     "Bad password",
			err:      fmt.Errorf("failed SASL auth: password authentication failed for user"),
			expected: `password authentication failed for database "app"`,
		},
		{
			name:     "Missing database",
			err:      fmt.Errorf(`database "app" does not exist`),
			expected: `database "app" does not exist`,
		},
		{
			name:     "Timeout",
			err:      fmt.Errorf("dial tcp: i/o timeout"),
			expected: "connection timed out to localhost:5432",
		},
		{
			name:     "Too many connections",
			err:      fmt.Errorf("FATAL: too many connections for role"),
			expected: `too many connections to database "app"`,
		},
		{
			name:     "Unclassified",
			err:      fmt.Errorf("something odd"),
			expected: "failed to connect to database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapConnectionError(tt.err, "localhost", 5432, "app")
			assert.Contains(t, wrapped.Error(), tt.expected)
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}
}

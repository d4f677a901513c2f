package pgsetup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "app",
		Username: "deploy",
	}
}

func TestConnectionConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConnectionConfig_ValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConnectionConfig)
		want   string
	}{
		{name: "Missing host", mutate: func(c *ConnectionConfig) { c.Host = "" }, want: "host is required"},
		{name: "Zero port", mutate: func(c *ConnectionConfig) { c.Port = 0 }, want: "out of range"},
		{name: "Port too large", mutate: func(c *ConnectionConfig) { c.Port = 70000 }, want: "out of range"},
		{name: "Missing database", mutate: func(c *ConnectionConfig) { c.Database = "" }, want: "database is required"},
		{name: "Missing username", mutate: func(c *ConnectionConfig) { c.Username = "" }, want: "username is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConnectionConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := &ConnectionConfig{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
	assert.Contains(t, err.Error(), "database is required")
	assert.Contains(t, err.Error(), "username is required")
}

func TestTransactionMode_String(t *testing.T) {
	assert.Equal(t, "per-statement", PerStatement.String())
	assert.Equal(t, "single-transaction", SingleTransaction.String())
	assert.Equal(t, "TransactionMode(9)", TransactionMode(9).String())
}

func TestStatementStatus_String(t *testing.T) {
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "not attempted", StatusNotAttempted.String())
}

func TestSummary_String(t *testing.T) {
	s := Summary{
		TotalFiles:      3,
		FailedFiles:     1,
		TotalStatements: 10,
		Succeeded:       7,
		Failed:          1,
		NotAttempted:    2,
		Elapsed:         1500 * time.Millisecond,
	}

	assert.Equal(t,
		"files 3 (ok 2 / failed 1) | statements 10 (ok 7 / failed 1 / skipped 2) | 1.5s",
		s.String())
}

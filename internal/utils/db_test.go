package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDBLockError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"sqlite locked", errors.New("database is locked"), true},
		{"sqlite busy", errors.New("SQLITE_BUSY: database table is locked"), true},
		{"mysql lock wait", errors.New("Error 1205: Lock wait timeout exceeded"), true},
		{"postgres deadlock", errors.New("deadlock detected"), true},
		{"unrelated", errors.New("syntax error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDBLockError(tt.err))
		})
	}
}

func TestIsTransientDBError(t *testing.T) {
	assert.True(t, IsTransientDBError(context.DeadlineExceeded))
	assert.True(t, IsTransientDBError(context.Canceled))
	assert.True(t, IsTransientDBError(errors.New("database is locked")))
	assert.False(t, IsTransientDBError(errors.New("constraint violation")))
	assert.False(t, IsTransientDBError(nil))
}

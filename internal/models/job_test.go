package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{JobStatusPending, JobStatusProcessing, true},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusProcessing, JobStatusCompleted, true},
		{JobStatusProcessing, JobStatusFailed, true},
		{JobStatusProcessing, JobStatusCancelled, false},
		{JobStatusFailed, JobStatusPending, true},
		{JobStatusFailed, JobStatusProcessing, false},
		{JobStatusCompleted, JobStatusPending, false},
		{JobStatusCancelled, JobStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(JobStatusPending))
	assert.False(t, IsTerminal(JobStatusProcessing))
	assert.True(t, IsTerminal(JobStatusCompleted))
	assert.True(t, IsTerminal(JobStatusFailed))
	assert.True(t, IsTerminal(JobStatusCancelled))
}

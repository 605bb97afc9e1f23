package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes  int
		expected string
	}{
		{0, "0 min"},
		{1, "1 min"},
		{59, "59 min"},
		{60, "1h 0min"},
		{125, "2h 5min"},
		{-3, "0 min"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatMinutes(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestElapsed(t *testing.T) {
	got := Elapsed(time.Now().Add(-1500 * time.Millisecond))
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "s")
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 30, 0, 0, time.UTC)
}

func TestIsPeakHour(t *testing.T) {
	assert.False(t, IsPeakHour(at(6)))
	assert.True(t, IsPeakHour(at(7)))
	assert.True(t, IsPeakHour(at(9)))
	assert.False(t, IsPeakHour(at(10)))
	assert.False(t, IsPeakHour(at(12)))
	assert.True(t, IsPeakHour(at(17)))
	assert.True(t, IsPeakHour(at(19)))
	assert.False(t, IsPeakHour(at(20)))
}

func TestIsNightTimeWrapsMidnight(t *testing.T) {
	assert.True(t, IsNightTime(at(22)))
	assert.True(t, IsNightTime(at(23)))
	assert.True(t, IsNightTime(at(0)))
	assert.True(t, IsNightTime(at(5)))
	assert.False(t, IsNightTime(at(6)))
	assert.False(t, IsNightTime(at(21)))
}

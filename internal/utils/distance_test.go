package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistance(t *testing.T) {
	// One degree of longitude on the equator.
	assert.InDelta(t, 111.19, CalculateDistance(0, 0, 0, 1), 0.01)

	// New York to Los Angeles.
	assert.InDelta(t, 3936, CalculateDistance(40.7128, -74.0060, 34.0522, -118.2437), 5)

	assert.Zero(t, CalculateDistance(51.5, -0.12, 51.5, -0.12))
}

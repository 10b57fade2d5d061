package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEfficiency(t *testing.T) {
	assert.Equal(t, 92, Efficiency(324, 298))
	assert.Equal(t, 100, Efficiency(10, 10))
	assert.Equal(t, 50, Efficiency(2, 1))
	assert.Equal(t, 0, Efficiency(10, 0))
	assert.Equal(t, 0, Efficiency(0, 0))
	assert.Equal(t, 0, Efficiency(-1, 5))
}

package xmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 2, FloorDiv(10, 5))
	assert.Equal(t, 1, FloorDiv(9, 5))
	assert.Equal(t, 0, FloorDiv(4, 5))
	assert.Equal(t, -1, FloorDiv(-1, 5))
	assert.Equal(t, -1, FloorDiv(-5, 5))
	assert.Equal(t, -2, FloorDiv(-6, 5))
	assert.Equal(t, int64(-4), FloorDiv(int64(-16), int64(5)))
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 2, CeilDiv(10, 5))
	assert.Equal(t, 2, CeilDiv(6, 5))
	assert.Equal(t, 1, CeilDiv(1, 5))
	assert.Equal(t, 0, CeilDiv(0, 5))
	assert.Equal(t, 0, CeilDiv(-4, 5))
	assert.Equal(t, -1, CeilDiv(-5, 5))
	assert.Equal(t, -1, CeilDiv(-9, 5))
}

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRandomIsDeterministic(t *testing.T) {
	a, b := NewRandom(7), NewRandom(7)
	for range 100 {
		v := a()
		assert.Equal(t, v, b())
		assert.GreaterOrEqual(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
}

package material

import (
	"testing"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/stretchr/testify/assert"
)

func TestNewBasicMaterial(t *testing.T) {
	m := NewBasicMaterial()
	assert.Equal(t, "basic", m.Name())
	assert.Equal(t, common.Color{1, 1, 1, 1}, m.Color())

	pink := common.MustParseColor("hotpink")
	m = NewBasicMaterial(WithName("cube"), WithColor(pink))
	assert.Equal(t, "cube", m.Name())
	assert.Equal(t, pink, m.Color())

	m.SetColor(common.Color{0, 0, 0, 1})
	assert.Equal(t, common.Color{0, 0, 0, 1}, m.Color())
}

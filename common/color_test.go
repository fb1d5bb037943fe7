package common

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"hotpink", Color{1, 105.0 / 255, 180.0 / 255, 1}},
		{"HotPink", Color{1, 105.0 / 255, 180.0 / 255, 1}},
		{"#373349", Color{55.0 / 255, 51.0 / 255, 73.0 / 255, 1}},
		{"#fff", Color{1, 1, 1, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			require.NoError(t, err)
			for i := range got {
				assert.InDelta(t, tc.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestParseColorRejectsUnknown(t *testing.T) {
	_, err := ParseColor("notacolor")
	assert.Error(t, err)

	_, err = ParseColor("#12")
	assert.Error(t, err)

	assert.Panics(t, func() { MustParseColor("#zzzzzz") })
}

func TestColorFromRGBA(t *testing.T) {
	got := ColorFromRGBA(color.RGBA{R: 255, G: 0, B: 51, A: 128})
	assert.InDelta(t, 1.0, got[0], 1e-6)
	assert.Zero(t, got[1])
	assert.InDelta(t, 0.2, got[2], 1e-6)
	assert.InDelta(t, 128.0/255, got[3], 1e-6)
}

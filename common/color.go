package common

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color is a linear RGBA colour with components in [0, 1], laid out for direct GPU upload.
type Color [4]float32

// ColorFromRGBA converts an 8-bit colour into a Color.
func ColorFromRGBA(c color.RGBA) Color {
	return Color{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// ParseColor parses a CSS colour name (e.g. "hotpink") or a hex string ("#rrggbb" or "#rgb").
//
// Parameters:
//   - s: the colour string
//
// Returns:
//   - Color: the parsed colour with alpha 1
//   - error: error if s is neither a known colour name nor valid hex
func ParseColor(s string) (Color, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[key]; ok {
		return ColorFromRGBA(c), nil
	}
	if !strings.HasPrefix(key, "#") {
		return Color{}, fmt.Errorf("unknown color %q", s)
	}
	c, err := colorful.Hex(key)
	if err != nil {
		return Color{}, fmt.Errorf("failed to parse color %q: %w", s, err)
	}
	return Color{float32(c.R), float32(c.G), float32(c.B), 1}, nil
}

// MustParseColor is like ParseColor but panics on error. Intended for constants.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// R returns the red component.
func (c Color) R() float32 { return c[0] }

// G returns the green component.
func (c Color) G() float32 { return c[1] }

// B returns the blue component.
func (c Color) B() float32 { return c[2] }

// A returns the alpha component.
func (c Color) A() float32 { return c[3] }

// Package palette derives stage colors. Adjacent stages get hues that are
// far apart on the color wheel rather than a smooth gradient.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is a fully saturated, full value color identified by its hue.
type Color struct {
	Hue float64 // degrees in [0, 360)
	RGB color.NRGBA
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.RGB.R, c.RGB.G, c.RGB.B)
}

// Generate returns n colors. Hues are spaced 360/n apart starting at 0,
// then the two halves of the hue list are interleaved so that neighbours
// sit far apart. For even n every interleaved pair is 180 degrees apart.
func Generate(n int) []Color {
	if n <= 0 {
		return []Color{}
	}

	hues := make([]float64, n)
	step := 360.0 / float64(n)
	for i := range hues {
		hues[i] = float64(i) * step
	}

	split := (n + 1) / 2
	ordered := Interleave(hues[:split], hues[split:])

	out := make([]Color, 0, n)
	for _, h := range ordered {
		out = append(out, FromHue(h))
	}
	return out
}

// Interleave merges a and b pairwise (a[0], b[0], a[1], b[1], ...). The
// leftover tail of the longer slice is appended as is.
func Interleave[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		out = append(out, a[i], b[i])
	}
	out = append(out, a[n:]...)
	out = append(out, b[n:]...)
	return out
}

// FromHue converts a hue (degrees) to an HSV color with S = V = 1.
func FromHue(h float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	sector := h / 60
	x := 1 - math.Abs(math.Mod(sector, 2)-1)

	var r, g, b float64
	switch int(sector) {
	case 0:
		r, g, b = 1, x, 0
	case 1:
		r, g, b = x, 1, 0
	case 2:
		r, g, b = 0, 1, x
	case 3:
		r, g, b = 0, x, 1
	case 4:
		r, g, b = x, 0, 1
	default:
		r, g, b = 1, 0, x
	}

	return Color{
		Hue: h,
		RGB: color.NRGBA{R: channel(r), G: channel(g), B: channel(b), A: 0xff},
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(v * 255))
}

// ParseHex parses "#rrggbb" or "rrggbb". The returned Color's Hue is
// derived from the RGB value.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("palette: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("palette: invalid hex color %q: %w", s, err)
	}
	c := color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
	return Color{Hue: hueOf(c), RGB: c}, nil
}

func hueOf(c color.NRGBA) float64 {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	d := hi - lo
	if d == 0 {
		return 0
	}

	var h float64
	switch hi {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

// ForStages assigns one color per stage name in display order. Generated
// colors are used unless overrides holds an entry for the stage.
func ForStages(names []string, overrides map[string]Color) []Color {
	out := Generate(len(names))
	for i, name := range names {
		if c, ok := overrides[name]; ok {
			out[i] = c
		}
	}
	return out
}

package render

import (
	"strconv"
	"strings"
)

// RGB is a normalized color triple with each channel in [0, 1].
type RGB struct {
	R, G, B float64
}

var black = RGB{0, 0, 0}

// ResolveColor parses a hex color string like "#1A2B3C" into an RGB
// triple. The leading "#" is optional and case does not matter. Anything
// that is not exactly six hex digits after normalization resolves to
// black: color is cosmetic, and a bad value stored by an older client
// must not abort a render.
func ResolveColor(hex string) RGB {
	normalized := strings.ToLower(strings.TrimPrefix(hex, "#"))
	if len(normalized) != 6 {
		return black
	}

	channels := make([]float64, 3)
	for i := range 3 {
		value, err := strconv.ParseUint(normalized[2*i:2*i+2], 16, 8)
		if err != nil {
			return black
		}
		channels[i] = float64(value) / 255
	}

	return RGB{R: channels[0], G: channels[1], B: channels[2]}
}

package beany

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/colornames"
)

// ParseHexColor parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA" with an
// optional leading '#'.
func ParseHexColor(hex string) (gputypes.Color, error) {
	s := strings.TrimPrefix(hex, "#")

	var r, g, b, a uint32
	a = 255

	var ok bool
	switch len(s) {
	case 3:
		ok = parseHex(s[0:1], &r) && parseHex(s[1:2], &g) && parseHex(s[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		ok = parseHex(s[0:1], &r) && parseHex(s[1:2], &g) && parseHex(s[2:3], &b) && parseHex(s[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		ok = parseHex(s[0:2], &r) && parseHex(s[2:4], &g) && parseHex(s[4:6], &b)
	case 8:
		ok = parseHex(s[0:2], &r) && parseHex(s[2:4], &g) && parseHex(s[4:6], &b) && parseHex(s[6:8], &a)
	}
	if !ok {
		return gputypes.Color{}, fmt.Errorf("beany: invalid hex color %q", hex)
	}
	return fromRGBA(color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}), nil
}

func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// NamedColor looks up an SVG 1.1 color name, ignoring case.
func NamedColor(name string) (gputypes.Color, bool) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return gputypes.Color{}, false
	}
	return fromRGBA(c), true
}

func fromRGBA(c color.RGBA) gputypes.Color {
	return gputypes.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

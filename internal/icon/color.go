package icon

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses a CSS color: #rgb, #rrggbb, #rrggbbaa or rgb(r, g, b)
// with channels in 0..255. The leading '#' is optional.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if args, ok := strings.CutPrefix(strings.ToLower(s), "rgb("); ok {
		return parseRGB(s, args)
	}

	hex := strings.TrimPrefix(s, "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func parseRGB(s, args string) (color.NRGBA, error) {
	args, ok := strings.CutSuffix(args, ")")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want 3 channels", s)
	}

	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: channel %d out of range", s, i+1)
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xff}, nil
}

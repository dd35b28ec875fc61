package export

import (
	"strconv"
	"strings"
)

// rgb is an 8-bit colour.
type rgb struct {
	R, G, B int
}

var (
	white  = rgb{R: 255, G: 255, B: 255}
	orange = rgb{R: 239, G: 125, B: 0}
)

// parseColour reads "#rrggbb" or "#rgb", returning fallback for anything else.
func parseColour(s string, fallback rgb) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return rgb{R: int(v>>16&0xff), G: int(v>>8&0xff), B: int(v&0xff)}
}

func (c rgb) hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []int{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4&0xf]
		b[2+2*i] = digits[v&0xf]
	}
	return string(b)
}

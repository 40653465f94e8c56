package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var hslRe = regexp.MustCompile(`^hsl\(\s*(-?[0-9.]+)\s*,\s*([0-9.]+)%\s*,\s*([0-9.]+)%\s*\)$`)

// HexColor converts a CSS colour to one Graphviz and terminals understand.
// hsl() strings become #rrggbb; anything else passes through.
func HexColor(css string) string {
	m := hslRe.FindStringSubmatch(css)
	if m == nil {
		return css
	}
	h, _ := strconv.ParseFloat(m[1], 64)
	s, _ := strconv.ParseFloat(m[2], 64)
	l, _ := strconv.ParseFloat(m[3], 64)
	r, g, b := hslToRGB(h, s/100, l/100)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360
	s = math.Min(math.Max(s, 0), 1)
	l = math.Min(math.Max(l, 0), 1)

	if s == 0 {
		v := uint8(math.Round(l * 255))
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	conv := func(t float64) uint8 {
		return uint8(math.Round(hueToRGB(p, q, t) * 255))
	}
	return conv(h + 1.0/3), conv(h), conv(h - 1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

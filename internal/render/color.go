package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	Black = color.NRGBA{A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Brightness is the luma of c (0.299R + 0.587G + 0.114B) scaled to [0, 1]. Alpha is ignored.
func Brightness(c color.Color) float64 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return (0.299*float64(n.R) + 0.587*float64(n.G) + 0.114*float64(n.B)) / 255
}

// TextColor picks black or white text for a background of color c.
func TextColor(c color.Color) color.NRGBA {
	return TextColorFor(Brightness(c))
}

// TextColorFor picks black text from a brightness of 0.5 upwards and white below it.
func TextColorFor(brightness float64) color.NRGBA {
	if brightness >= 0.5 {
		return Black
	}
	return White
}

// ParseHex parses "#rrggbb" or "#rrggbbaa"; the leading # is optional.
func ParseHex(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextColorBoundary(t *testing.T) {
	assert.Equal(t, Black, TextColorFor(0.5))
	assert.Equal(t, White, TextColorFor(0.4999))
	assert.Equal(t, Black, TextColor(color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	assert.Equal(t, White, TextColor(color.NRGBA{R: 0, G: 0, B: 128, A: 255}))
}

func TestBrightnessIgnoresAlpha(t *testing.T) {
	opaque := Brightness(color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	faint := Brightness(color.NRGBA{R: 200, G: 100, B: 50, A: 10})
	assert.InDelta(t, opaque, faint, 0.01)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 128, B: 0, A: 255}, c)

	c, err = ParseHex("102030dc")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xdc}, c)

	for _, bad := range []string{"", "#fff", "#gggggg", "#1234567"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

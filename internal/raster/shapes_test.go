package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

func diamond() []Pt {
	return []Pt{P(50, 0), P(100, 50), P(50, 100), P(0, 50)}
}

func TestFillPolygon(t *testing.T) {
	img := NewCanvas(100, 100)
	FillPolygon(img, red, diamond()...)

	assert.Equal(t, red, img.RGBAAt(50, 50))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(2, 2))
}

func TestFillPolygonNilColorIsNoop(t *testing.T) {
	img := NewCanvas(10, 10)
	FillPolygon(img, nil, P(0, 0), P(10, 0), P(10, 10))
	FillPolygon(img, red, P(0, 0), P(10, 0))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(5, 2))
}

func TestStrokePolygonLeavesCenterEmpty(t *testing.T) {
	img := NewCanvas(100, 100)
	StrokePolygon(img, red, 10, diamond()...)

	assert.Equal(t, color.RGBA{}, img.RGBAAt(50, 50), "center stays empty")
	assert.Equal(t, red, img.RGBAAt(50, 4), "border near the top vertex")
	assert.Equal(t, color.RGBA{}, img.RGBAAt(2, 2), "outside stays empty")
}

func TestInsetWorksForBothOrientations(t *testing.T) {
	square := []Pt{P(0, 0), P(10, 0), P(10, 10), P(0, 10)}
	want := []Pt{P(2, 2), P(8, 2), P(8, 8), P(2, 8)}
	got := Inset(square, 2)
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, 1e-4)
		assert.InDelta(t, want[i].Y, got[i].Y, 1e-4)
	}

	reversed := []Pt{P(0, 10), P(10, 10), P(10, 0), P(0, 0)}
	got = Inset(reversed, 2)
	assert.InDelta(t, 2, got[0].X, 1e-4)
	assert.InDelta(t, 8, got[0].Y, 1e-4)
}

func TestFillRoundedRectClipsCorners(t *testing.T) {
	img := NewCanvas(100, 60)
	FillRoundedRect(img, red, image.Rect(0, 0, 100, 60), 30)

	assert.Equal(t, red, img.RGBAAt(50, 30))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(98, 58))
}

func TestCircleMask(t *testing.T) {
	mask := CircleMask(100)
	assert.Equal(t, uint8(255), mask.AlphaAt(50, 50).A)
	assert.Equal(t, uint8(0), mask.AlphaAt(1, 1).A)
	assert.Equal(t, uint8(0), mask.AlphaAt(98, 98).A)
}

func TestFillEllipse(t *testing.T) {
	img := NewCanvas(40, 20)
	FillEllipse(img, red, img.Bounds())
	assert.Equal(t, red, img.RGBAAt(20, 10))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
}

func TestScaleHelpers(t *testing.T) {
	src := NewCanvas(200, 100)
	FillRect(src, red, src.Bounds())

	w := ScaleToWidth(src, 50)
	assert.Equal(t, image.Rect(0, 0, 50, 25), w.Bounds())
	h := ScaleToHeight(src, 10)
	assert.Equal(t, image.Rect(0, 0, 20, 10), h.Bounds())
	assert.InDelta(t, 255, int(h.RGBAAt(10, 5).R), 1)

	tiny := Resize(src, 0, 0)
	assert.Equal(t, image.Rect(0, 0, 1, 1), tiny.Bounds())
}

func TestPasteAndMask(t *testing.T) {
	src := NewCanvas(10, 10)
	FillRect(src, red, src.Bounds())

	masked := ApplyMask(src, CircleMask(10))
	assert.Equal(t, red, masked.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{}, masked.RGBAAt(0, 0))

	dst := NewCanvas(30, 30)
	Paste(dst, masked, image.Pt(20, 20))
	assert.Equal(t, red, dst.RGBAAt(25, 25))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(5, 5))
	require.Equal(t, color.RGBA{}, dst.RGBAAt(20, 20))
}

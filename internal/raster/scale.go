package raster

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Resize scales src to exactly w×h.
func Resize(src image.Image, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := NewCanvas(w, h)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// ScaleToWidth resizes src to width w keeping its aspect ratio.
func ScaleToWidth(src image.Image, w int) *image.RGBA {
	b := src.Bounds()
	return Resize(src, w, int(float64(w)*float64(b.Dy())/float64(b.Dx())))
}

// ScaleToHeight resizes src to height h keeping its aspect ratio.
func ScaleToHeight(src image.Image, h int) *image.RGBA {
	b := src.Bounds()
	return Resize(src, int(float64(h)*float64(b.Dx())/float64(b.Dy())), h)
}

// Paste composites src over dst with its top-left corner at at.
func Paste(dst draw.Image, src image.Image, at image.Point) {
	b := src.Bounds()
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, src, b.Min, draw.Over)
}

// ApplyMask returns a copy of src whose alpha is multiplied by mask.
// src and mask must share the same size.
func ApplyMask(src image.Image, mask image.Image) *image.RGBA {
	b := src.Bounds()
	dst := NewCanvas(b.Dx(), b.Dy())
	draw.DrawMask(dst, dst.Bounds(), src, b.Min, mask, mask.Bounds().Min, draw.Over)
	return dst
}

// Package raster holds the drawing primitives shared by the panel renderers and the
// portrait cropper: anti-aliased polygons, rounded rectangles, ellipses and scaling.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so four segments approximate a circle.
const kappa = 0.5522848

// Pt is a point in canvas pixels.
type Pt struct {
	X, Y float32
}

// P is shorthand for Pt{x, y}.
func P(x, y float32) Pt {
	return Pt{X: x, Y: y}
}

// NewCanvas returns a transparent RGBA image anchored at the origin.
func NewCanvas(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func rasterizer(dst draw.Image) *vector.Rasterizer {
	b := dst.Bounds()
	return vector.NewRasterizer(b.Dx(), b.Dy())
}

func paint(z *vector.Rasterizer, dst draw.Image, c color.Color) {
	b := dst.Bounds()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

func polygonPath(z *vector.Rasterizer, pts []Pt) {
	z.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		z.LineTo(p.X, p.Y)
	}
	z.ClosePath()
}

// FillPolygon fills the closed polygon through pts. A nil color draws nothing.
func FillPolygon(dst draw.Image, c color.Color, pts ...Pt) {
	if c == nil || len(pts) < 3 {
		return
	}
	z := rasterizer(dst)
	polygonPath(z, pts)
	paint(z, dst, c)
}

// StrokePolygon draws a border of the given width inside a convex polygon's edges.
func StrokePolygon(dst draw.Image, c color.Color, width float32, pts ...Pt) {
	if c == nil || len(pts) < 3 || width <= 0 {
		return
	}
	inner := Inset(pts, width)
	z := rasterizer(dst)
	polygonPath(z, pts)
	// The inner contour runs the other way so the rasterizer cancels it out.
	reversed := make([]Pt, len(inner))
	for i, p := range inner {
		reversed[len(inner)-1-i] = p
	}
	polygonPath(z, reversed)
	paint(z, dst, c)
}

// Inset moves every edge of a convex polygon inwards by d and returns the new vertices.
func Inset(pts []Pt, d float32) []Pt {
	n := len(pts)
	sign := float32(1)
	if signedArea(pts) < 0 {
		sign = -1
	}

	type line struct{ p, dir Pt }
	lines := make([]line, n)
	for i := range pts {
		a, b := pts[i], pts[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			lines[i] = line{p: a}
			continue
		}
		nx, ny := sign*-dy/l, sign*dx/l
		lines[i] = line{p: P(a.X+nx*d, a.Y+ny*d), dir: P(dx, dy)}
	}

	out := make([]Pt, n)
	for i := range pts {
		prev, cur := lines[(i+n-1)%n], lines[i]
		denom := cross(prev.dir, cur.dir)
		if denom == 0 {
			out[i] = cur.p
			continue
		}
		t := cross(P(cur.p.X-prev.p.X, cur.p.Y-prev.p.Y), cur.dir) / denom
		out[i] = P(prev.p.X+t*prev.dir.X, prev.p.Y+t*prev.dir.Y)
	}
	return out
}

func cross(a, b Pt) float32 {
	return a.X*b.Y - a.Y*b.X
}

func signedArea(pts []Pt) float32 {
	var area float32
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}

// FillRect fills r, blending over what is already there.
func FillRect(dst draw.Image, c color.Color, r image.Rectangle) {
	if c == nil {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// FillRoundedRect fills r with corners of the given radius.
func FillRoundedRect(dst draw.Image, c color.Color, r image.Rectangle, radius float32) {
	if c == nil || r.Empty() {
		return
	}
	x0, y0, x1, y1 := float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y)
	maxRadius := float32(math.Min(float64(x1-x0), float64(y1-y0))) / 2
	if radius > maxRadius {
		radius = maxRadius
	}
	k := radius * kappa

	z := rasterizer(dst)
	z.MoveTo(x0+radius, y0)
	z.LineTo(x1-radius, y0)
	z.CubeTo(x1-radius+k, y0, x1, y0+radius-k, x1, y0+radius)
	z.LineTo(x1, y1-radius)
	z.CubeTo(x1, y1-radius+k, x1-radius+k, y1, x1-radius, y1)
	z.LineTo(x0+radius, y1)
	z.CubeTo(x0+radius-k, y1, x0, y1-radius+k, x0, y1-radius)
	z.LineTo(x0, y0+radius)
	z.CubeTo(x0, y0+radius-k, x0+radius-k, y0, x0+radius, y0)
	z.ClosePath()
	paint(z, dst, c)
}

// FillEllipse fills the ellipse inscribed in r.
func FillEllipse(dst draw.Image, c color.Color, r image.Rectangle) {
	if c == nil || r.Empty() {
		return
	}
	z := rasterizer(dst)
	ellipsePath(z, r)
	paint(z, dst, c)
}

func ellipsePath(z *vector.Rasterizer, r image.Rectangle) {
	cx := float32(r.Min.X+r.Max.X) / 2
	cy := float32(r.Min.Y+r.Max.Y) / 2
	rx := float32(r.Dx()) / 2
	ry := float32(r.Dy()) / 2
	kx, ky := rx*kappa, ry*kappa

	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	z.ClosePath()
}

// CircleMask returns an alpha mask of size×size holding the inscribed circle.
func CircleMask(size int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	z := vector.NewRasterizer(size, size)
	ellipsePath(z, mask.Bounds())
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

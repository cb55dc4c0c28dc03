package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// minFontSize is where the bounded size search stops.
const minFontSize = 1

type faceKey struct {
	size int
	bold bool
}

// Fonts measures and draws text, caching one face per size and weight.
type Fonts struct {
	regular *opentype.Font
	bold    *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFonts loads the Go fonts, or the TrueType/OpenType file at path for both weights.
func NewFonts(path string) (*Fonts, error) {
	regularData, boldData := goregular.TTF, gobold.TTF
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		regularData, boldData = data, data
	}
	regular, err := opentype.Parse(regularData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	bold, err := opentype.Parse(boldData)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Fonts{regular: regular, bold: bold, faces: make(map[faceKey]font.Face)}, nil
}

// MustDefaultFonts returns the embedded Go fonts, which always parse.
func MustDefaultFonts() *Fonts {
	f, err := NewFonts("")
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Fonts) face(size int, bold bool) font.Face {
	if size < minFontSize {
		size = minFontSize
	}
	key := faceKey{size: size, bold: bold}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face
	}
	src := f.regular
	if bold {
		src = f.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		face = basicfont.Face7x13
	}
	f.faces[key] = face
	return face
}

// Measure returns the advance width of text in pixels.
func (f *Fonts) Measure(text string, size int, bold bool) float64 {
	return fixedToFloat(font.MeasureString(f.face(size, bold), text))
}

// Fit returns the largest size, counting down from maxSize, at which text is narrower
// than budget pixels. The search is bounded and ends at the minimum size.
func (f *Fonts) Fit(text string, maxSize int, budget float64, bold bool) int {
	for size := maxSize; size > minFontSize; size-- {
		if f.Measure(text, size, bold) < budget {
			return size
		}
	}
	return minFontSize
}

// Draw renders text with its top-left (ascender line) at x, y.
func (f *Fonts) Draw(dst draw.Image, text string, x, y float64, size int, bold bool, c color.Color) {
	face := f.face(size, bold)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y) + face.Metrics().Ascent},
	}
	d.DrawString(text)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

package portrait

import (
	"context"
	"image"
	"log/slog"

	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/raster"
)

// DefaultWidth is the side of the square portrait handed to the batter panel.
const DefaultWidth = 470

// Cropper turns a raw photo into a circular portrait, centered on a face when one is found.
type Cropper struct {
	Width    int
	Detector Detector
	Logger   *slog.Logger
}

// NewCropper builds a cropper; a nil detector means no face detection.
func NewCropper(width int, detector Detector, logger *slog.Logger) *Cropper {
	if width <= 0 {
		width = DefaultWidth
	}
	if detector == nil {
		detector = Unavailable{}
	}
	return &Cropper{Width: width, Detector: detector, Logger: logger}
}

// Crop returns a Width×Width RGBA image whose pixels outside the inscribed circle are
// transparent. The photo is first scaled to Width keeping its aspect ratio; the square
// window is then centered on the first detected face, or on the image when there is none.
func (c *Cropper) Crop(ctx context.Context, src image.Image) image.Image {
	scaled := raster.ScaleToWidth(src, c.Width)

	var faces []image.Rectangle
	if c.Detector != nil {
		var err error
		faces, err = c.Detector.Detect(ctx, scaled)
		if err != nil {
			logging.Warn(logging.FromContext(ctx, c.Logger), "face detection failed", logging.FieldError, err)
			faces = nil
		}
	}

	window, ok := faceWindow(scaled.Bounds(), faces)
	if !ok {
		window = centeredSquare(scaled.Bounds())
	}
	square := raster.Resize(scaled.SubImage(window), c.Width, c.Width)
	return raster.ApplyMask(square, raster.CircleMask(c.Width))
}

// faceWindow returns the largest square centered on the first face that stays within
// bounds.
func faceWindow(bounds image.Rectangle, faces []image.Rectangle) (image.Rectangle, bool) {
	if len(faces) == 0 {
		return image.Rectangle{}, false
	}
	face := faces[0]
	cx := (face.Min.X + face.Max.X) / 2
	cy := (face.Min.Y + face.Max.Y) / 2
	radius := min(cx-bounds.Min.X, bounds.Max.X-cx, cy-bounds.Min.Y, bounds.Max.Y-cy)
	if radius <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(cx-radius, cy-radius, cx+radius, cy+radius), true
}

func centeredSquare(bounds image.Rectangle) image.Rectangle {
	side := min(bounds.Dx(), bounds.Dy())
	x := bounds.Min.X + (bounds.Dx()-side)/2
	y := bounds.Min.Y + (bounds.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}

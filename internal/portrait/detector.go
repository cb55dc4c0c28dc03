package portrait

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"time"
)

const defaultDetectTimeout = 20 * time.Second

// Detector locates faces in an image. An empty result is not an error.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]image.Rectangle, error)
}

// Unavailable is the detector used when no face-location capability is configured.
type Unavailable struct{}

// Detect always reports no faces.
func (Unavailable) Detect(context.Context, image.Image) ([]image.Rectangle, error) {
	return nil, nil
}

// ExecDetector runs an external program that reads a PNG on stdin and prints a JSON
// array of boxes: [{"top":..,"right":..,"bottom":..,"left":..}].
type ExecDetector struct {
	Command string
	Args    []string
	Timeout time.Duration
}

type faceBox struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Detect encodes img, runs the command and parses its output.
func (d ExecDetector) Detect(ctx context.Context, img image.Image) ([]image.Rectangle, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDetectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return nil, fmt.Errorf("encode detector input: %w", err)
	}

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.Command, d.Args...)
	cmd.Stdin = &in
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("face detector %s: %w: %s", d.Command, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return parseBoxes(out.Bytes())
}

func parseBoxes(data []byte) ([]image.Rectangle, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var boxes []faceBox
	if err := json.Unmarshal(data, &boxes); err != nil {
		return nil, fmt.Errorf("parse detector output: %w", err)
	}
	out := make([]image.Rectangle, 0, len(boxes))
	for _, b := range boxes {
		r := image.Rect(b.Left, b.Top, b.Right, b.Bottom)
		if r.Empty() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

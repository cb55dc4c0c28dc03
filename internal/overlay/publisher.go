package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is the published overlay file the encoder samples.
const DefaultFileName = "overlay.png"

// Publisher writes frames as PNG so readers only ever see a complete file.
type Publisher struct {
	dir     string
	name    string
	encoder png.Encoder
}

// NewPublisher publishes into dir/name; an empty name uses DefaultFileName.
func NewPublisher(dir, name string) *Publisher {
	if name == "" {
		name = DefaultFileName
	}
	return &Publisher{
		dir:     dir,
		name:    name,
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// Path is the published file.
func (p *Publisher) Path() string {
	return filepath.Join(p.dir, p.name)
}

// TempPath is where a frame is written before it is renamed into Path.
func (p *Publisher) TempPath() string {
	ext := filepath.Ext(p.name)
	return filepath.Join(p.dir, strings.TrimSuffix(p.name, ext)+"-tmp"+ext)
}

// Publish encodes img, writes it to TempPath and renames it over Path.
// The encoded bytes are returned for in-process consumers.
func (p *Publisher) Publish(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create overlay dir: %w", err)
	}
	tmp := p.TempPath()
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write overlay: %w", err)
	}
	if err := os.Rename(tmp, p.Path()); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("publish overlay: %w", err)
	}
	return buf.Bytes(), nil
}

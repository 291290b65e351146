package output

import (
	"fmt"

	"github.com/fogleman/gg"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// PNGWriter paints pixels into a drawing context and saves a PNG on Close
type PNGWriter struct {
	path    string
	ctx     *gg.Context
	width   int
	written int
	closed  bool
}

// NewPNGWriter creates a PNG sink that writes to path when closed
func NewPNGWriter(path string) *PNGWriter {
	return &PNGWriter{path: path}
}

// WriteHeader allocates the canvas
func (p *PNGWriter) WriteHeader(width, height int) error {
	if p.ctx != nil {
		return ErrHeaderWritten
	}
	p.ctx = gg.NewContext(width, height)
	p.width = width
	return nil
}

// WritePixel paints the next pixel in row-major order
func (p *PNGWriter) WritePixel(c core.Color) error {
	if p.ctx == nil {
		return ErrNoHeader
	}
	if p.written >= p.width*p.ctx.Height() {
		return ErrTooManyPixels
	}
	r, g, b := Quantize(c, DefaultMaxValue)
	p.ctx.SetRGB255(r, g, b)
	p.ctx.SetPixel(p.written%p.width, p.written/p.width)
	p.written++
	return nil
}

// Close saves the PNG. Nothing is written if the header never arrived.
func (p *PNGWriter) Close() error {
	if p.closed || p.ctx == nil {
		p.closed = true
		return nil
	}
	p.closed = true
	if err := p.ctx.SavePNG(p.path); err != nil {
		return fmt.Errorf("failed to save png: %w", err)
	}
	return nil
}

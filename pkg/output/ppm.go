package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// PPMWriter writes a plain-text (P3) pixel map.
//
// Output is buffered; Close flushes the buffer and then closes the
// underlying writer when it implements io.Closer.
type PPMWriter struct {
	out      *bufio.Writer
	closer   io.Closer
	maxValue int

	width, height int
	written       int
	headerDone    bool
	closed        bool
}

// NewPPMWriter creates a PPM writer on top of w
func NewPPMWriter(w io.Writer, maxValue int) *PPMWriter {
	p := &PPMWriter{
		out:      bufio.NewWriter(w),
		maxValue: maxValue,
	}
	if c, ok := w.(io.Closer); ok {
		p.closer = c
	}
	return p
}

// CreatePPM creates (or truncates) the file at path and returns a writer owning it
func CreatePPM(path string, maxValue int) (*PPMWriter, error) {
	if maxValue <= 0 {
		return nil, fmt.Errorf("invalid max value %d", maxValue)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return NewPPMWriter(file, maxValue), nil
}

// WriteHeader writes "P3\n<width> <height>\n<max>\n"
func (p *PPMWriter) WriteHeader(width, height int) error {
	if p.headerDone {
		return ErrHeaderWritten
	}
	if _, err := fmt.Fprintf(p.out, "P3\n%d %d\n%d\n", width, height, p.maxValue); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	p.width, p.height = width, height
	p.headerDone = true
	return nil
}

// WritePixel writes one "<r> <g> <b>\n" line
func (p *PPMWriter) WritePixel(c core.Color) error {
	if !p.headerDone {
		return ErrNoHeader
	}
	if p.written >= p.width*p.height {
		return ErrTooManyPixels
	}
	r, g, b := Quantize(c, p.maxValue)
	if _, err := fmt.Fprintf(p.out, "%d %d %d\n", r, g, b); err != nil {
		return fmt.Errorf("failed to write pixel %d: %w", p.written, err)
	}
	p.written++
	return nil
}

// Close flushes buffered output and releases the underlying file.
// The file is closed even when the flush fails; the first error is returned.
func (p *PPMWriter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if err := p.out.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush output: %w", err))
	}
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close output: %w", err))
		}
	}
	return errors.Join(errs...)
}

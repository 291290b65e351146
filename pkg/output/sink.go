// Package output writes rendered pixels to image files.
package output

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// DefaultMaxValue is the channel maximum used by 8-bit images
const DefaultMaxValue = 255

var (
	// ErrHeaderWritten is returned when WriteHeader is called twice
	ErrHeaderWritten = errors.New("header already written")
	// ErrNoHeader is returned when pixels are written before the header
	ErrNoHeader = errors.New("header not written")
	// ErrTooManyPixels is returned when more pixels arrive than the header announced
	ErrTooManyPixels = errors.New("more pixels than width*height")
)

// Sink receives an image as a header followed by pixels in row-major order,
// left to right and top to bottom. Colors are linear; the sink gamma-corrects
// and quantizes them. Close must be called on every exit path.
type Sink interface {
	WriteHeader(width, height int) error
	WritePixel(c core.Color) error
	Close() error
}

// Quantize converts a linear color to integer channels in [0, maxValue]
// after gamma 2 correction.
func Quantize(c core.Color, maxValue int) (r, g, b int) {
	corrected := c.Clamp(0, 1).GammaCorrect(2.0).Clamp(0, 1)
	scale := float64(maxValue)
	return int(scale * corrected.X), int(scale * corrected.Y), int(scale * corrected.Z)
}

// NewFileSink creates a sink for path, choosing the format from the extension.
// ".png" produces a PNG (8-bit), anything else a plain-text PPM.
func NewFileSink(path string, maxValue int) (Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if maxValue != DefaultMaxValue {
			return nil, fmt.Errorf("png output only supports max value %d, got %d", DefaultMaxValue, maxValue)
		}
		return NewPNGWriter(path), nil
	default:
		return CreatePPM(path, maxValue)
	}
}

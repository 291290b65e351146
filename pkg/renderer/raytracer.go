package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/output"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	Seed            int64 // Base seed; row r samples from its own stream seeded Seed+r
	NumWorkers      int   // Number of parallel workers (0 = use CPU count)
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           711,
		Height:          400,
		SamplesPerPixel: 50,
		MaxDepth:        5,
		Seed:            42,
	}
}

// Validate reports configuration values that cannot produce an image
func (c SamplingConfig) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("image size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.SamplesPerPixel <= 0 {
		errs = append(errs, fmt.Errorf("samples per pixel must be positive, got %d", c.SamplesPerPixel))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth))
	}
	return errors.Join(errs...)
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene      Scene
	config     SamplingConfig
	integrator integrator.Integrator
	newSampler func(seed int64) core.Sampler
	logger     core.Logger
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, config SamplingConfig) *Raytracer {
	return &Raytracer{
		scene:      scene,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(),
		newSampler: func(seed int64) core.Sampler { return core.NewSeededSampler(seed) },
		logger:     NewDiscardLogger(),
	}
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
}

// GetSamplingConfig returns the active sampling configuration
func (rt *Raytracer) GetSamplingConfig() SamplingConfig {
	return rt.config
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// SetSamplerFactory replaces how per-row samplers are created from seeds
func (rt *Raytracer) SetSamplerFactory(factory func(seed int64) core.Sampler) {
	rt.newSampler = factory
}

// SetLogger sets the logger used for progress output
func (rt *Raytracer) SetLogger(logger core.Logger) {
	rt.logger = logger
}

// RenderRow renders one row, counted from the top of the image, and returns
// the averaged linear color of each pixel plus the number of samples taken.
func (rt *Raytracer) RenderRow(row int) ([]core.Color, int) {
	width, height := rt.config.Width, rt.config.Height
	camera := rt.scene.GetCamera()
	world := rt.scene.GetWorld()
	sampler := rt.newSampler(rt.config.Seed + int64(row))

	// Image-plane t grows upward, rows grow downward
	j := height - 1 - row

	pixels := make([]core.Color, width)
	samples := 0
	for i := 0; i < width; i++ {
		var ps PixelStats
		for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
			s := (float64(i) + sampler.Get1D()) / float64(width)
			t := (float64(j) + sampler.Get1D()) / float64(height)

			ray := camera.GetRay(s, t, sampler)
			ps.AddSample(rt.integrator.RayColor(ray, world, rt.config.MaxDepth, sampler))
		}
		pixels[i] = ps.GetColor()
		samples += ps.SampleCount
	}

	return pixels, samples
}

// Render traces every pixel and streams the image to sink, top row first.
// Rows are rendered in parallel but written strictly in order. The sink is
// not closed; the caller owns it.
func (rt *Raytracer) Render(ctx context.Context, sink output.Sink) (RenderStats, error) {
	startTime := time.Now()
	if err := rt.config.Validate(); err != nil {
		return RenderStats{}, fmt.Errorf("invalid sampling config: %w", err)
	}
	if err := sink.WriteHeader(rt.config.Width, rt.config.Height); err != nil {
		return RenderStats{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := NewWorkerPool(rt, rt.config.NumWorkers)
	stats := RenderStats{Workers: pool.GetNumWorkers()}
	rt.logger.Printf("Rendering %dx%d, %d samples per pixel, depth %d, %d workers\n",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, rt.config.MaxDepth, stats.Workers)

	pool.Start(ctx)
	for row := 0; row < rt.config.Height; row++ {
		pool.SubmitTask(RowTask{Row: row})
	}
	go pool.Stop()

	pending := make(map[int]RowResult)
	nextRow := 0
	for result := range pool.Results() {
		if result.Error != nil {
			stats.Duration = time.Since(startTime)
			return stats, fmt.Errorf("render stopped at row %d: %w", nextRow, result.Error)
		}
		pending[result.Row] = result

		for {
			ready, ok := pending[nextRow]
			if !ok {
				break
			}
			delete(pending, nextRow)

			for _, c := range ready.Pixels {
				if err := sink.WritePixel(c); err != nil {
					stats.Duration = time.Since(startTime)
					return stats, fmt.Errorf("failed to write row %d: %w", nextRow, err)
				}
			}
			stats.TotalPixels += len(ready.Pixels)
			stats.TotalSamples += ready.Samples
			stats.RowsWritten++
			nextRow++

			if nextRow%50 == 0 {
				rt.logger.Printf("Scanlines remaining: %d\n", rt.config.Height-nextRow)
			}
		}
	}

	stats.Duration = time.Since(startTime)
	rt.logger.Printf("Render completed in %v (%.1f samples per pixel)\n", stats.Duration, stats.SamplesPerPixel())
	return stats, nil
}

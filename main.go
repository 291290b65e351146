package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "three-balls", "Built-in scene name or path to a .json scene file")
	outPath := flag.String("out", "", "Output file (.ppm or .png); default output/<scene>/render_<timestamp>.ppm")
	width := flag.Int("width", 0, "Image width override (0 = scene default)")
	height := flag.Int("height", 0, "Image height override (0 = scene default)")
	samples := flag.Int("samples", 0, "Samples per pixel override (0 = scene default)")
	depth := flag.Int("depth", -1, "Maximum bounce depth override (-1 = scene default)")
	seed := flag.Int64("seed", -1, "Random seed override (-1 = scene default)")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = number of CPUs)")
	legacy := flag.Bool("legacy", false, "Last-hit-wins scene resolution and near-root-only spheres")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Sphere Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, name := range scene.Names() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("  <file>.json - scene description file")
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.ppm unless -out is given")
		return
	}

	logger := renderer.NewDefaultLogger()
	logger.Printf("Starting Sphere Raytracer...\n")

	selectedScene, err := createScene(*sceneType, scene.Options{Legacy: *legacy})
	if err != nil {
		log.Fatalf("Error creating scene: %v", err)
	}
	logger.Printf("Using %s scene (%d spheres)...\n", selectedScene.Name, selectedScene.World.Len())

	config := applyOverrides(selectedScene.SamplingConfig, overrides{
		width:   *width,
		height:  *height,
		samples: *samples,
		depth:   *depth,
		seed:    *seed,
		workers: *workers,
	})
	if config.Width != selectedScene.SamplingConfig.Width || config.Height != selectedScene.SamplingConfig.Height {
		// Keep the image undistorted when the size changes
		cameraConfig := selectedScene.CameraConfig
		cameraConfig.AspectRatio = float64(config.Width) / float64(config.Height)
		selectedScene.CameraConfig = cameraConfig
		selectedScene.Camera = renderer.NewCamera(cameraConfig)
	}

	filename := *outPath
	if filename == "" {
		outputDir, err := createOutputDir(selectedScene.Name)
		if err != nil {
			log.Fatalf("Error creating output directory: %v", err)
		}
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(outputDir, fmt.Sprintf("render_%s.ppm", timestamp))
	}

	if err := render(context.Background(), selectedScene, config, filename, logger); err != nil {
		log.Fatalf("Error rendering: %v", err)
	}
	logger.Printf("Render saved as %s\n", filename)
}

// render traces the scene into filename, closing the sink even on failure
func render(ctx context.Context, s *scene.Scene, config renderer.SamplingConfig, filename string, logger core.Logger) (err error) {
	sink, err := output.NewFileSink(filename, output.DefaultMaxValue)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to save %s: %w", filename, closeErr)
		}
	}()

	raytracer := renderer.NewRaytracer(s, config)
	raytracer.SetLogger(logger)

	stats, err := raytracer.Render(ctx, sink)
	if err != nil {
		return err
	}
	logger.Printf("Traced %d samples over %d pixels with %d workers\n", stats.TotalSamples, stats.TotalPixels, stats.Workers)
	return nil
}

// createScene resolves a built-in scene name or a .json scene file
func createScene(sceneType string, opts scene.Options) (*scene.Scene, error) {
	if strings.EqualFold(filepath.Ext(sceneType), ".json") {
		return loaders.LoadSceneFile(sceneType, opts)
	}
	return scene.Create(sceneType, opts)
}

// createOutputDir creates output/<scene> and returns its path
func createOutputDir(sceneName string) (string, error) {
	outputDir := filepath.Join("output", sceneName)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	return outputDir, nil
}

// overrides holds command-line values that replace scene defaults
type overrides struct {
	width, height int // 0 keeps the scene value
	samples       int // 0 keeps the scene value
	depth         int // negative keeps the scene value
	seed          int64
	workers       int
}

// applyOverrides returns config with every set override applied. Setting only
// one image dimension derives the other from the scene's aspect ratio.
func applyOverrides(config renderer.SamplingConfig, o overrides) renderer.SamplingConfig {
	aspect := float64(config.Width) / float64(config.Height)
	switch {
	case o.width > 0 && o.height > 0:
		config.Width, config.Height = o.width, o.height
	case o.width > 0:
		config.Width = o.width
		config.Height = max(int(float64(o.width)/aspect), 1)
	case o.height > 0:
		config.Height = o.height
		config.Width = max(int(float64(o.height)*aspect), 1)
	}
	if o.samples > 0 {
		config.SamplesPerPixel = o.samples
	}
	if o.depth >= 0 {
		config.MaxDepth = o.depth
	}
	if o.seed >= 0 {
		config.Seed = o.seed
	}
	config.NumWorkers = o.workers
	return config
}

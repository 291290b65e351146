package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// ErrUnknownScene is returned by Create for names that are not registered
var ErrUnknownScene = errors.New("unknown scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	World          *geometry.HitList // Objects in the scene
	SamplingConfig renderer.SamplingConfig
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld returns the shapes to trace against
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// Options control how a built-in scene is assembled
type Options struct {
	// Legacy selects last-hit-wins resolution and near-root-only spheres,
	// reproducing the output of the first version of this renderer.
	Legacy bool
}

// builders maps scene names to their constructors
var builders = map[string]func(Options) *Scene{
	"three-balls":  NewThreeBallsScene,
	"two-spheres":  NewTwoSpheresScene,
	"hollow-glass": NewHollowGlassScene,
}

// Create builds the named scene
func Create(name string, opts Options) (*Scene, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScene, name, Names())
	}
	return build(opts), nil
}

// Names returns the registered scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newWorld creates a hit list configured for opts, adding each sphere with
// the requested root behavior.
func newWorld(opts Options, spheres ...*geometry.Sphere) *geometry.HitList {
	world := geometry.NewHitList()
	if opts.Legacy {
		world.Resolution = geometry.LastHit
	}
	for _, sphere := range spheres {
		sphere.NearRootOnly = opts.Legacy
		world.Add(sphere)
	}
	return world
}

// heightForAspect returns the image height for a width at the given aspect ratio
func heightForAspect(width int, aspect float64) int {
	height := int(float64(width) / aspect)
	if height < 1 {
		height = 1
	}
	return height
}

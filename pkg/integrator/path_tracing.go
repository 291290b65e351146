package integrator

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// ShadowAcneEpsilon is the minimum hit distance for scattered rays.
// It keeps a ray from re-hitting the surface it just left.
const ShadowAcneEpsilon = 0.001

// PathTracingIntegrator implements recursive path tracing against a sky gradient
type PathTracingIntegrator struct {
	TopColor    core.Color // Sky color straight up
	BottomColor core.Color // Sky color straight down
}

// NewPathTracingIntegrator creates an integrator with the white to sky-blue gradient
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{
		TopColor:    core.NewColor(0.5, 0.7, 1.0),
		BottomColor: core.NewColor(1.0, 1.0, 1.0),
	}
}

// RayColor computes the color for a single ray using recursive path tracing
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Color{}
	}

	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return pt.Background(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter || scatter.Absorbed() {
		return core.Color{}
	}

	return scatter.Attenuation.MultiplyVec(pt.RayColor(scatter.Scattered, world, depth-1, sampler))
}

// Background returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) Background(r core.Ray) core.Color {
	unitDirection := r.Direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return pt.BottomColor.Multiply(1.0 - t).Add(pt.TopColor.Multiply(t))
}

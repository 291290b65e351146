package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// countingShape records how many times it was queried and never reports a hit
type countingShape struct {
	calls int
}

func (c *countingShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	c.calls++
	return nil, false
}

// fixedMaterial returns a preset scatter result
type fixedMaterial struct {
	result  material.ScatterResult
	scatter bool
}

func (f *fixedMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return f.result, f.scatter
}

// createTestWorld creates the classic ground plus center sphere world
func createTestWorld() *geometry.HitList {
	ground := geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewColor(0.8, 0.8, 0.0)))
	center := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewColor(0.1, 0.2, 0.5)))
	return geometry.NewHitList(ground, center)
}

func TestPathTracingDepthTermination(t *testing.T) {
	world := createTestWorld()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	integrator := NewPathTracingIntegrator()

	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)),
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)),
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0)),
	}

	for _, ray := range rays {
		for _, depth := range []int{0, -1} {
			if c := integrator.RayColor(ray, world, depth, sampler); !c.Equals(core.Color{}) {
				t.Errorf("Expected black for depth %d, got %v", depth, c)
			}
		}
	}

	// Depth exhaustion returns before the world is consulted
	counter := &countingShape{}
	integrator.RayColor(rays[0], counter, 0, sampler)
	if counter.calls != 0 {
		t.Errorf("World should not be queried at depth 0, got %d calls", counter.calls)
	}
}

func TestPathTracingBackground(t *testing.T) {
	integrator := NewPathTracingIntegrator()
	empty := geometry.NewHitList()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Color
	}{
		{"straight up is sky blue", core.NewVec3(0, 1, 0), core.NewColor(0.5, 0.7, 1.0)},
		{"straight down is white", core.NewVec3(0, -1, 0), core.NewColor(1, 1, 1)},
		{"horizon is the midpoint", core.NewVec3(0, 0, -1), core.NewColor(0.75, 0.85, 1.0)},
		{"length does not matter", core.NewVec3(0, 5, 0), core.NewColor(0.5, 0.7, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 0, 0), tt.direction)
			got := integrator.RayColor(ray, empty, 5, sampler)
			if !got.ApproxEquals(tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	// Pure sky blue exactly for a straight-up ray
	up := integrator.Background(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)))
	if !up.Equals(core.NewColor(0.5, 0.7, 1.0)) {
		t.Errorf("Expected exact sky blue, got %v", up)
	}
}

func TestPathTracingMultiplicativeAttenuation(t *testing.T) {
	integrator := NewPathTracingIntegrator()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	// Every hit scatters straight up into the sky with a fixed attenuation
	attenuation := core.NewColor(0.5, 0.25, 1.0)
	mat := &fixedMaterial{
		result: material.ScatterResult{
			Scattered:   core.NewRay(core.NewVec3(0, 10, -1), core.NewVec3(0, 1, 0)),
			Attenuation: attenuation,
		},
		scatter: true,
	}
	world := geometry.NewHitList(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, mat))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	got := integrator.RayColor(ray, world, 2, sampler)
	expected := attenuation.MultiplyVec(core.NewColor(0.5, 0.7, 1.0))
	if !got.ApproxEquals(expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	// One bounce of budget: the scattered ray hits depth exhaustion
	if got := integrator.RayColor(ray, world, 1, sampler); !got.Equals(core.Color{}) {
		t.Errorf("Expected black when the bounce budget runs out, got %v", got)
	}
}

func TestPathTracingAbsorption(t *testing.T) {
	integrator := NewPathTracingIntegrator()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	escape := core.NewRay(core.NewVec3(0, 10, -1), core.NewVec3(0, 1, 0))

	tests := []struct {
		name string
		mat  *fixedMaterial
	}{
		{"material reports absorption", &fixedMaterial{result: material.ScatterResult{Scattered: escape}, scatter: false}},
		{"near-zero attenuation", &fixedMaterial{result: material.ScatterResult{Scattered: escape, Attenuation: core.NewColor(1e-9, 0, 0)}, scatter: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := geometry.NewHitList(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, tt.mat))
			if got := integrator.RayColor(ray, world, 10, sampler); !got.Equals(core.Color{}) {
				t.Errorf("Expected black, got %v", got)
			}
		})
	}
}

func TestPathTracingSceneStaysInRange(t *testing.T) {
	world := createTestWorld()
	world.Add(
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 0.0)),
	)
	integrator := NewPathTracingIntegrator()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))

	for i := 0; i < 500; i++ {
		dir := core.NewVec3(sampler.Get1D()*2-1, sampler.Get1D()-0.7, -1)
		c := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), dir), world, 5, sampler)
		for _, channel := range []float64{c.X, c.Y, c.Z} {
			if math.IsNaN(channel) || channel < 0 || channel > 1 {
				t.Fatalf("Color channel out of range: %v", c)
			}
		}
	}
}

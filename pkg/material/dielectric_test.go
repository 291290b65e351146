package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

func TestDielectric_AttenuationAlwaysWhite(t *testing.T) {
	glass := NewDielectric(1.5)
	white := core.NewColor(1, 1, 1)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	directions := []core.Vec3{
		core.NewVec3(1, -1, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(5, -0.1, 0),
		core.NewVec3(0.2, 1, 0.3), // from inside
	}

	for _, dir := range directions {
		ray := core.NewRay(core.NewVec3(0, 1, 0), dir)
		for _, front := range []bool{true, false} {
			hit := HitRecord{Point: core.NewVec3(0, 0, 0), FrontFace: front}
			hit.Normal = core.NewVec3(0, 1, 0)
			if dir.Dot(hit.Normal) > 0 {
				hit.Normal = hit.Normal.Negate()
			}
			for i := 0; i < 50; i++ {
				result, scattered := glass.Scatter(ray, hit, sampler)
				if !scattered {
					t.Fatal("Dielectric should always scatter")
				}
				if !result.Attenuation.Equals(white) {
					t.Fatalf("Expected attenuation %v, got %v", white, result.Attenuation)
				}
				if !result.Scattered.Origin.Equals(hit.Point) {
					t.Fatalf("Scattered ray should start at the hit point")
				}
			}
		}
	}
}

func TestDielectric_RefractionBendsTowardNormal(t *testing.T) {
	glass := NewDielectric(1.5)
	ray := core.NewRay(core.NewVec3(-1, 1, 0), core.NewVec3(1, -1, 0))
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
	}

	// A draw above the Schlick reflectance (~5% at 45°) always refracts
	result, _ := glass.Scatter(ray, hit, &sequenceSampler{values: []float64{0.99}})
	dir := result.Scattered.Direction

	if dir.Y >= 0 {
		t.Fatalf("Refracted ray should continue into the material, got %v", dir)
	}
	sinOut := math.Abs(dir.X) / dir.Length()
	expected := math.Sin(math.Pi/4) / 1.5
	if math.Abs(sinOut-expected) > 1e-9 {
		t.Errorf("Expected sin(theta_out) %f, got %f", expected, sinOut)
	}

	// A draw below the reflectance reflects instead
	result, _ = glass.Scatter(ray, hit, &sequenceSampler{values: []float64{0.0}})
	reflected := core.NewVec3(1, 1, 0).Normalize()
	if !result.Scattered.Direction.ApproxEquals(reflected, 1e-12) {
		t.Errorf("Expected reflection %v, got %v", reflected, result.Scattered.Direction)
	}
}

func TestDielectric_TotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// Exiting glass at 60 degrees: 1.5 * sin(60°) > 1
	angle := math.Pi / 3
	direction := core.NewVec3(math.Sin(angle), math.Cos(angle), 0)
	ray := core.NewRay(core.NewVec3(0, -1, 0), direction)
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, -1, 0),
		FrontFace: false,
	}

	// Even a draw that would normally refract must reflect
	result, _ := glass.Scatter(ray, hit, &sequenceSampler{values: []float64{0.99}})
	expected := core.NewVec3(math.Sin(angle), -math.Cos(angle), 0)
	if !result.Scattered.Direction.ApproxEquals(expected, 1e-12) {
		t.Errorf("Expected total internal reflection %v, got %v", expected, result.Scattered.Direction)
	}
}

func TestReflectance(t *testing.T) {
	// Normal incidence reduces to r0
	r0 := math.Pow((1-1.5)/(1+1.5), 2)
	if got := Reflectance(1.0, 1.5); math.Abs(got-r0) > 1e-12 {
		t.Errorf("Expected r0 %f at normal incidence, got %f", r0, got)
	}

	// Grazing incidence reflects everything
	if got := Reflectance(0.0, 1.5); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("Expected full reflectance at grazing angle, got %f", got)
	}

	// Monotonic in angle
	prev := Reflectance(1.0, 1.0/1.5)
	for cos := 0.9; cos >= 0; cos -= 0.1 {
		cur := Reflectance(cos, 1.0/1.5)
		if cur < prev {
			t.Errorf("Reflectance should grow as the angle increases: %f < %f", cur, prev)
		}
		prev = cur
	}
}

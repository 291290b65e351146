package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// NewTwoSpheresScene creates a diffuse sphere sitting on a diffuse ground
// sphere, viewed straight down -z from the origin.
func NewTwoSpheresScene(opts Options) *Scene {
	samplingConfig := renderer.SamplingConfig{
		Width:           400,
		Height:          heightForAspect(400, 16.0/9.0),
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
	}

	cameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		AspectRatio:   16.0 / 9.0,
		FocusDistance: 1.0,
	}

	diffuse := material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))
	world := newWorld(opts,
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, diffuse),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, diffuse),
	)

	return &Scene{
		Name:           "two-spheres",
		Camera:         renderer.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		World:          world,
		SamplingConfig: samplingConfig,
	}
}

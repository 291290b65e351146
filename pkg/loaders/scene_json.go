package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Defaults applied to fields a scene file leaves out
const (
	DefaultWidth       = 400
	DefaultAspectRatio = 16.0 / 9.0
	DefaultVFov        = 90.0
)

// Vec3Cfg is a point or direction written as [x, y, z]
type Vec3Cfg [3]float64

func (v Vec3Cfg) vec() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// ColorCfg is a linear color written either as [r, g, b] in [0, 1] or as a
// CSS color name such as "gold" or "steelblue".
type ColorCfg [3]float64

// UnmarshalJSON accepts both color notations
func (c *ColorCfg) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown color name %q", name)
		}
		*c = ColorCfg{float64(rgba.R) / 255, float64(rgba.G) / 255, float64(rgba.B) / 255}
		return nil
	}

	var rgb [3]float64
	if err := json.Unmarshal(data, &rgb); err != nil {
		return fmt.Errorf("color must be [r, g, b] or a color name: %w", err)
	}
	*c = ColorCfg(rgb)
	return nil
}

func (c ColorCfg) color() core.Color {
	return core.NewColor(c[0], c[1], c[2])
}

// ImageCfg describes the output image and sampling budget
type ImageCfg struct {
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`      // derived from aspectRatio when omitted
	AspectRatio float64 `json:"aspectRatio,omitempty"` // ignored when height is set
	Samples     int     `json:"samples,omitempty"`
	Depth       *int    `json:"depth,omitempty"`
	Seed        *int64  `json:"seed,omitempty"`
}

// CameraCfg describes the camera placement and lens
type CameraCfg struct {
	LookFrom      Vec3Cfg  `json:"lookFrom"`
	LookAt        *Vec3Cfg `json:"lookAt,omitempty"` // defaults to one unit down -z from lookFrom
	Up            *Vec3Cfg `json:"up,omitempty"`     // defaults to +y
	VFov          float64  `json:"vfov,omitempty"`
	Aperture      float64  `json:"aperture,omitempty"`
	FocusDistance float64  `json:"focusDistance,omitempty"` // 0 focuses on lookAt
}

// MaterialCfg describes a named material
type MaterialCfg struct {
	Type            string   `json:"type"` // lambertian, metal or dielectric
	Albedo          ColorCfg `json:"albedo"`
	Fuzz            float64  `json:"fuzz,omitempty"`
	RefractionIndex float64  `json:"refractionIndex,omitempty"`
}

// SphereCfg places a sphere with a named material
type SphereCfg struct {
	Center   Vec3Cfg `json:"center"`
	Radius   float64 `json:"radius"` // negative radius flips the normal (hollow glass)
	Material string  `json:"material"`
}

// SceneFile is the JSON scene description
type SceneFile struct {
	Name          string                 `json:"name,omitempty"`
	Image         ImageCfg               `json:"image"`
	Camera        CameraCfg              `json:"camera"`
	Materials     map[string]MaterialCfg `json:"materials"`
	Spheres       []SphereCfg            `json:"spheres"`
	HitResolution string                 `json:"hitResolution,omitempty"` // closest (default) or last
	NearRootOnly  bool                   `json:"nearRootOnly,omitempty"`
}

// LoadSceneFile reads a JSON scene description and builds the scene.
// The scene is named after the file when the description has no name.
func LoadSceneFile(path string, opts scene.Options) (*scene.Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	cfg, err := ParseSceneFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	s, err := cfg.Build(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid scene %s: %w", path, err)
	}
	return s, nil
}

// ParseSceneFile decodes a JSON scene description. Unknown fields are errors
// so that typos do not silently fall back to defaults.
func ParseSceneFile(r io.Reader) (*SceneFile, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var cfg SceneFile
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Build validates the description and assembles the scene. opts.Legacy
// forces last-hit resolution and near-root-only spheres regardless of the
// file's settings.
func (cfg *SceneFile) Build(opts scene.Options) (*scene.Scene, error) {
	samplingConfig, err := cfg.Image.samplingConfig()
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}

	cameraConfig, err := cfg.Camera.cameraConfig(float64(samplingConfig.Width) / float64(samplingConfig.Height))
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	materials := make(map[string]material.Material, len(cfg.Materials))
	for name, mc := range cfg.Materials {
		mat, err := mc.build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	resolution, err := geometry.ParseResolution(cfg.HitResolution)
	if err != nil {
		return nil, err
	}
	nearRootOnly := cfg.NearRootOnly
	if opts.Legacy {
		resolution = geometry.LastHit
		nearRootOnly = true
	}

	if len(cfg.Spheres) == 0 {
		return nil, errors.New("scene has no spheres")
	}
	world := geometry.NewHitList()
	world.Resolution = resolution
	for i, sc := range cfg.Spheres {
		mat, ok := materials[sc.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: unknown material %q", i, sc.Material)
		}
		if sc.Radius == 0 {
			return nil, fmt.Errorf("sphere %d: radius must be non-zero", i)
		}
		sphere := geometry.NewSphere(sc.Center.vec(), sc.Radius, mat)
		sphere.NearRootOnly = nearRootOnly
		world.Add(sphere)
	}

	return &scene.Scene{
		Name:           cfg.Name,
		Camera:         renderer.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		World:          world,
		SamplingConfig: samplingConfig,
	}, nil
}

func (ic ImageCfg) samplingConfig() (renderer.SamplingConfig, error) {
	config := renderer.DefaultSamplingConfig()

	width := ic.Width
	if width == 0 {
		width = DefaultWidth
	}
	height := ic.Height
	if height == 0 {
		aspect := ic.AspectRatio
		if aspect == 0 {
			aspect = DefaultAspectRatio
		}
		if aspect < 0 {
			return config, fmt.Errorf("aspect ratio must be positive, got %g", aspect)
		}
		height = max(int(float64(width)/aspect), 1)
	}
	config.Width = width
	config.Height = height

	if ic.Samples != 0 {
		config.SamplesPerPixel = ic.Samples
	}
	if ic.Depth != nil {
		config.MaxDepth = *ic.Depth
	}
	if ic.Seed != nil {
		config.Seed = *ic.Seed
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (cc CameraCfg) cameraConfig(aspectRatio float64) (renderer.CameraConfig, error) {
	lookFrom := cc.LookFrom.vec()
	lookAt := lookFrom.Add(core.NewVec3(0, 0, -1))
	if cc.LookAt != nil {
		lookAt = cc.LookAt.vec()
	}
	up := core.NewVec3(0, 1, 0)
	if cc.Up != nil {
		up = cc.Up.vec()
	}
	vfov := cc.VFov
	if vfov == 0 {
		vfov = DefaultVFov
	}

	config := renderer.CameraConfig{
		LookFrom:      lookFrom,
		LookAt:        lookAt,
		Up:            up,
		VFov:          vfov,
		AspectRatio:   aspectRatio,
		Aperture:      cc.Aperture,
		FocusDistance: cc.FocusDistance,
	}

	viewDir := lookAt.Subtract(lookFrom)
	switch {
	case viewDir.NearZero():
		return config, errors.New("lookFrom and lookAt must differ")
	case viewDir.Cross(up).NearZero():
		return config, errors.New("up must not be parallel to the view direction")
	case vfov <= 0 || vfov >= 180:
		return config, fmt.Errorf("vfov must be in (0, 180), got %g", vfov)
	case cc.Aperture < 0:
		return config, fmt.Errorf("aperture must not be negative, got %g", cc.Aperture)
	case cc.FocusDistance < 0:
		return config, fmt.Errorf("focus distance must not be negative, got %g", cc.FocusDistance)
	}
	return config, nil
}

func (mc MaterialCfg) build() (material.Material, error) {
	switch strings.ToLower(mc.Type) {
	case "lambertian", "diffuse":
		return material.NewLambertian(mc.Albedo.color()), nil
	case "metal":
		return material.NewMetal(mc.Albedo.color(), mc.Fuzz), nil
	case "dielectric", "glass":
		if mc.RefractionIndex <= 0 {
			return nil, fmt.Errorf("refraction index must be positive, got %g", mc.RefractionIndex)
		}
		return material.NewDielectric(mc.RefractionIndex), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", mc.Type)
	}
}

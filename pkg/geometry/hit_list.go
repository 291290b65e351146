package geometry

import (
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Resolution selects how a HitList picks among several intersecting shapes
type Resolution int

const (
	// ClosestHit narrows the search window to the nearest hit found so far
	// and returns the geometrically closest intersection.
	ClosestHit Resolution = iota
	// LastHit tests every shape against the original window and keeps the
	// last one that reports a hit, in insertion order. This matches the
	// legacy renderer's output but is not the nearest hit when shapes overlap.
	LastHit
)

func (r Resolution) String() string {
	switch r {
	case ClosestHit:
		return "closest"
	case LastHit:
		return "last"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// ParseResolution converts a config name into a Resolution
func ParseResolution(name string) (Resolution, error) {
	switch name {
	case "", "closest":
		return ClosestHit, nil
	case "last":
		return LastHit, nil
	default:
		return ClosestHit, fmt.Errorf("unknown hit resolution %q (want \"closest\" or \"last\")", name)
	}
}

// HitList is an ordered collection of shapes that is itself a Shape.
// Shapes are appended while building a scene; the list is read-only while rendering.
type HitList struct {
	Shapes     []Shape
	Resolution Resolution
}

// NewHitList creates a hit list with the given shapes
func NewHitList(shapes ...Shape) *HitList {
	return &HitList{Shapes: shapes}
}

// Add appends shapes to the list
func (h *HitList) Add(shapes ...Shape) {
	h.Shapes = append(h.Shapes, shapes...)
}

// Len returns the number of shapes in the list
func (h *HitList) Len() int {
	return len(h.Shapes)
}

// Hit checks if a ray hits any shape in the list
func (h *HitList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if h.Resolution == LastHit {
		return h.lastHit(ray, tMin, tMax)
	}
	return h.closestHit(ray, tMin, tMax)
}

func (h *HitList) closestHit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range h.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

func (h *HitList) lastHit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var lastHit *material.HitRecord

	for _, shape := range h.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, tMax); isHit {
			lastHit = hit
		}
	}

	return lastHit, lastHit != nil
}

// Package kernel defines the geometry kernel used to preview generated
// scripts. Profiles are 2-D regions in sketch space; solids are built from
// profiles in sketch space and then oriented onto a canonical plane.
package kernel

import "github.com/chazu/kclexport/pkg/plane"

// Profile is an opaque handle to a 2-D region.
type Profile interface {
	// Bounds returns the axis-aligned bounding rectangle.
	Bounds() (min, max [2]float64)
}

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Profiles
	Polygon(points [][2]float64) (Profile, error)
	Circle(cx, cy, radius float64) (Profile, error)
	Merge(a, b Profile) Profile
	Cut(a, b Profile) Profile

	// Extrude sweeps p along sketch +Z, or -Z for a negative height.
	Extrude(p Profile, height float64) Solid
	// Revolve sweeps p about the sketch Y axis by angle degrees.
	Revolve(p Profile, angle float64) (Solid, error)
	// Orient maps a sketch-space solid onto a canonical plane.
	Orient(s Solid, p plane.Canonical) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

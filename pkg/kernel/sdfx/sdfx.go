// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/kclexport/pkg/kernel"
	"github.com/chazu/kclexport/pkg/plane"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxProfile wraps an sdf.SDF2 to implement kernel.Profile.
type sdfxProfile struct {
	s sdf.SDF2
}

func (p *sdfxProfile) Bounds() (min, max [2]float64) {
	bb := p.s.BoundingBox()
	return [2]float64{bb.Min.X, bb.Min.Y}, [2]float64{bb.Max.X, bb.Max.Y}
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing with DefaultMeshCells.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a kernel meshing with the given number of marching
// cubes cells along the longest axis.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func unwrap2(p kernel.Profile) sdf.SDF2 {
	return p.(*sdfxProfile).s
}

func wrap2(s sdf.SDF2) kernel.Profile {
	return &sdfxProfile{s: s}
}

// Polygon creates a closed polygon profile.
func (k *SdfxKernel) Polygon(points [][2]float64) (kernel.Profile, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("sdfx: polygon needs at least 3 points, got %d", len(points))
	}
	vs := make([]v2.Vec, len(points))
	for i, p := range points {
		vs[i] = v2.Vec{X: p[0], Y: p[1]}
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, fmt.Errorf("sdfx: polygon: %w", err)
	}
	return wrap2(s), nil
}

// Circle creates a circular profile.
func (k *SdfxKernel) Circle(cx, cy, radius float64) (kernel.Profile, error) {
	s, err := sdf.Circle2D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: circle: %w", err)
	}
	return wrap2(sdf.Transform2D(s, sdf.Translate2d(v2.Vec{X: cx, Y: cy}))), nil
}

// Merge returns the union of two profiles.
func (k *SdfxKernel) Merge(a, b kernel.Profile) kernel.Profile {
	return wrap2(sdf.Union2D(unwrap2(a), unwrap2(b)))
}

// Cut returns the profile a with b removed.
func (k *SdfxKernel) Cut(a, b kernel.Profile) kernel.Profile {
	return wrap2(sdf.Difference2D(unwrap2(a), unwrap2(b)))
}

// Extrude sweeps p from z=0 to z=height. sdf.Extrude3D centers the solid
// on z=0, so it is shifted by half the height.
func (k *SdfxKernel) Extrude(p kernel.Profile, height float64) kernel.Solid {
	s := sdf.Extrude3D(unwrap2(p), math.Abs(height))
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Revolve sweeps p about the sketch Y axis. sdfx revolves about its 2-D Y
// axis into 3-D Z, so the result is turned back so that Z maps to Y.
func (k *SdfxKernel) Revolve(p kernel.Profile, angle float64) (kernel.Solid, error) {
	var (
		s   sdf.SDF3
		err error
	)
	if math.Abs(angle) >= 360 {
		s, err = sdf.Revolve3D(unwrap2(p))
	} else {
		s, err = sdf.RevolveTheta3D(unwrap2(p), math.Abs(angle)*math.Pi/180)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx: revolve: %w", err)
	}
	return wrap(sdf.Transform3D(s, sdf.RotateX(-math.Pi/2))), nil
}

// Orient maps sketch axes onto the canonical plane: XY is the identity,
// XZ sends sketch Y to Z, YZ sends sketch X to Y and sketch Y to Z.
func (k *SdfxKernel) Orient(s kernel.Solid, p plane.Canonical) kernel.Solid {
	quarter := math.Pi / 2
	switch p {
	case plane.Secondary:
		return wrap(sdf.Transform3D(unwrap(s), sdf.RotateX(quarter)))
	case plane.Tertiary:
		m := sdf.RotateZ(quarter).Mul(sdf.RotateX(quarter))
		return wrap(sdf.Transform3D(unwrap(s), m))
	}
	return s
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

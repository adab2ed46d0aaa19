package snapshot

import (
	"strings"

	"github.com/chazu/kclexport/pkg/host"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sketch is a named curve collection on a plane.
type Sketch struct {
	Label     string
	Plane     host.PlaneRef
	PlaneErr  error
	CurveList []host.Curve
	CurvesErr error
}

// NewSketch creates a sketch on plane with the given curves.
func NewSketch(name string, plane host.PlaneRef, curves ...host.Curve) *Sketch {
	return &Sketch{Label: name, Plane: plane, CurveList: curves}
}

func (s *Sketch) Token() string { return token("sketch", s.Label) }
func (s *Sketch) Name() string  { return s.Label }

// ReferencePlane implements host.Sketch.
func (s *Sketch) ReferencePlane() (host.PlaneRef, error) {
	if s.PlaneErr != nil {
		return nil, host.Fail("ReferencePlane", s.PlaneErr)
	}
	if s.Plane == nil {
		return nil, host.Fail("ReferencePlane", host.ErrUnavailable)
	}
	return s.Plane, nil
}

// Curves implements host.Sketch.
func (s *Sketch) Curves() ([]host.Curve, error) {
	if s.CurvesErr != nil {
		return nil, host.Fail("Curves", s.CurvesErr)
	}
	return s.CurveList, nil
}

// ---------------------------------------------------------------------------
// Planes
// ---------------------------------------------------------------------------

// Plane is a planar reference with an optional normal.
type Plane struct {
	kind      host.PlaneKind
	normal    r3.Vec
	hasNormal bool
	desc      string
}

// OriginPlane returns the construction plane named "xy", "xz" or "yz".
// Any other name yields a construction plane without normal.
func OriginPlane(name string) *Plane {
	p := &Plane{kind: host.PlaneConstruction, desc: "Origin " + strings.ToUpper(name) + " plane"}
	switch strings.ToLower(name) {
	case "xy":
		p.normal, p.hasNormal = r3.Vec{Z: 1}, true
	case "xz":
		p.normal, p.hasNormal = r3.Vec{Y: 1}, true
	case "yz":
		p.normal, p.hasNormal = r3.Vec{X: 1}, true
	}
	return p
}

// FacePlane returns a planar body face with the given normal.
func FacePlane(normal r3.Vec) *Plane {
	return &Plane{kind: host.PlaneFace, normal: normal, hasNormal: true, desc: "BRepFace"}
}

// ConstructionPlane returns a construction plane with the given normal.
func ConstructionPlane(normal r3.Vec) *Plane {
	return &Plane{kind: host.PlaneConstruction, normal: normal, hasNormal: true, desc: "ConstructionPlane"}
}

// NamedPlane returns an unrecognised reference known only by description.
func NamedPlane(desc string) *Plane {
	return &Plane{kind: host.PlaneOther, desc: desc}
}

func (p *Plane) Kind() host.PlaneKind { return p.kind }
func (p *Plane) Describe() string     { return p.desc }

// Normal implements host.PlaneRef.
func (p *Plane) Normal() (r3.Vec, error) {
	if !p.hasNormal {
		return r3.Vec{}, host.Fail("Normal", host.ErrUnsupported)
	}
	return p.normal, nil
}

// ---------------------------------------------------------------------------
// Curve helpers
// ---------------------------------------------------------------------------

// Pt returns a sketch point.
func Pt(x, y float64) r3.Vec {
	return r3.Vec{X: x, Y: y}
}

// Polygon returns closed line loops through the given points.
func Polygon(points ...r3.Vec) []host.Curve {
	curves := make([]host.Curve, 0, len(points))
	for i := range points {
		curves = append(curves, host.Line{Start: points[i], End: points[(i+1)%len(points)]})
	}
	return curves
}

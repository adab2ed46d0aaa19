package host

import "gonum.org/v1/gonum/spatial/r3"

// InternalUnit is the length unit every raw host value is expressed in.
const InternalUnit = "cm"

// DistanceUnit is the host's enumeration of document display units.
type DistanceUnit int

const (
	UnitUnknown DistanceUnit = iota
	UnitMillimeter
	UnitCentimeter
	UnitMeter
	UnitInch
	UnitFoot
)

func (u DistanceUnit) String() string {
	switch u {
	case UnitMillimeter:
		return "millimeter"
	case UnitCentimeter:
		return "centimeter"
	case UnitMeter:
		return "meter"
	case UnitInch:
		return "inch"
	case UnitFoot:
		return "foot"
	default:
		return "unknown"
	}
}

// Design is the active document of the host.
type Design interface {
	// DocumentName returns the persistent name of the document.
	DocumentName() (string, error)
	// IsSolidModel reports whether the document is a solid-model design.
	IsSolidModel() bool

	DistanceDisplayUnits() (DistanceUnit, error)
	DefaultLengthUnits() (string, error)
	// ConvertLength converts value between two unit names.
	ConvertLength(value float64, from, to string) (float64, error)

	Parameters() ([]Parameter, error)
	Components() ([]Component, error)
}

// Parameter is a named design parameter.
type Parameter struct {
	Name       string
	Value      float64 // internal units for lengths
	Unit       string
	Comment    string
	Expression string
	User       bool // user-defined, as opposed to generated by a feature
}

// Component is a container of sketches, features and the bodies they produce.
type Component interface {
	Name() string
	Sketches() ([]Sketch, error)
	Features() ([]Feature, error)
	Bodies() ([]Body, error)
}

// Sketch is a named collection of 2-D curves lying on one plane.
type Sketch interface {
	Token() string
	Name() string
	ReferencePlane() (PlaneRef, error)
	// Curves returns the curves in storage order, not connectivity order.
	Curves() ([]Curve, error)
}

// PlaneKind distinguishes the objects a sketch can be placed on.
type PlaneKind int

const (
	PlaneOther        PlaneKind = iota // unrecognised reference
	PlaneFace                          // planar face of a body
	PlaneConstruction                  // construction or origin plane
)

func (k PlaneKind) String() string {
	switch k {
	case PlaneFace:
		return "face"
	case PlaneConstruction:
		return "construction"
	default:
		return "other"
	}
}

// PlaneRef is an opaque planar reference.
type PlaneRef interface {
	Kind() PlaneKind
	// Normal returns the plane normal. It fails for references whose
	// geometry is not a plane.
	Normal() (r3.Vec, error)
	// Describe returns a textual description, e.g. "Origin XZ plane".
	Describe() string
}

// Body is a solid body handle identified by a stable token.
type Body interface {
	Token() string
	Name() string
	// CreatedBy returns the feature that created the body.
	CreatedBy() (Feature, error)
}

// Profile is a closed region of a sketch used as feature input.
type Profile interface {
	ParentSketch() (Sketch, error)
}

// Feature is any entry of a component's feature sequence. Features that
// implement none of Extrude, Revolve or Combine are skipped.
type Feature interface {
	Token() string
	Name() string
}

// BodyProducer is a feature that reports the bodies it produced.
type BodyProducer interface {
	Feature
	Bodies() ([]Body, error)
}

// Extrude sweeps a profile along the sketch normal.
type Extrude interface {
	BodyProducer
	Profiles() ([]Profile, error)
	Extent() (Extent, error)
}

// Revolve sweeps a profile around an axis.
type Revolve interface {
	BodyProducer
	Profiles() ([]Profile, error)
	Extent() (Extent, error)
	// Axis returns the direction of the revolution axis in sketch space.
	Axis() (r3.Vec, error)
}

// Combine applies a boolean operation to a target body and tool bodies.
type Combine interface {
	Feature
	Operation() (Operation, error)
	TargetBody() (Body, error)
	ToolBodies() ([]Body, error)
}

// Operation is a host feature operation.
type Operation int

const (
	OpUnknown Operation = iota
	OpJoin
	OpCut
	OpIntersect
	OpNewBody
	OpNewComponent
)

func (o Operation) String() string {
	switch o {
	case OpJoin:
		return "join"
	case OpCut:
		return "cut"
	case OpIntersect:
		return "intersect"
	case OpNewBody:
		return "new-body"
	case OpNewComponent:
		return "new-component"
	default:
		return "unknown"
	}
}

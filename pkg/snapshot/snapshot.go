// Package snapshot provides an immutable, in-memory implementation of the
// host query interface. A snapshot stands in for a live CAD document: it is
// built once (by hand or by the DSL engine) and then only read.
//
// Every query can be made to fail by setting the matching *Err field, which
// lets callers exercise the translator's fallback paths.
package snapshot

import (
	"fmt"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/units"
)

// Compile-time interface checks.
var (
	_ host.Design    = (*Design)(nil)
	_ host.Component = (*Component)(nil)
	_ host.Sketch    = (*Sketch)(nil)
	_ host.Extrude   = (*Extrude)(nil)
	_ host.Revolve   = (*Revolve)(nil)
	_ host.Combine   = (*Combine)(nil)
	_ host.Body      = (*Body)(nil)
)

// Design is the snapshot of one document.
type Design struct {
	Title string
	Solid bool

	Units       host.DistanceUnit
	UnitsErr    error
	UnitName    string
	UnitNameErr error
	// Scale, when non-zero, replaces the standard length conversion:
	// every conversion multiplies by Scale.
	Scale      float64
	ConvertErr error

	Params    []host.Parameter
	ParamsErr error

	Comps []*Component
}

// New creates a solid-model design displayed in millimetres.
func New(title string) *Design {
	return &Design{
		Title:    title,
		Solid:    true,
		Units:    host.UnitMillimeter,
		UnitName: "mm",
	}
}

// DocumentName implements host.Design.
func (d *Design) DocumentName() (string, error) {
	if d.Title == "" {
		return "", host.Fail("DocumentName", host.ErrUnavailable)
	}
	return d.Title, nil
}

// IsSolidModel implements host.Design.
func (d *Design) IsSolidModel() bool { return d.Solid }

// DistanceDisplayUnits implements host.Design.
func (d *Design) DistanceDisplayUnits() (host.DistanceUnit, error) {
	if d.UnitsErr != nil {
		return host.UnitUnknown, host.Fail("DistanceDisplayUnits", d.UnitsErr)
	}
	return d.Units, nil
}

// DefaultLengthUnits implements host.Design.
func (d *Design) DefaultLengthUnits() (string, error) {
	if d.UnitNameErr != nil {
		return "", host.Fail("DefaultLengthUnits", d.UnitNameErr)
	}
	return d.UnitName, nil
}

// ConvertLength implements host.Design.
func (d *Design) ConvertLength(value float64, from, to string) (float64, error) {
	if d.ConvertErr != nil {
		return 0, host.Fail("ConvertLength", d.ConvertErr)
	}
	if d.Scale != 0 {
		return value * d.Scale, nil
	}
	fu, ok := units.Parse(from)
	if !ok {
		return 0, host.Fail("ConvertLength", fmt.Errorf("unknown unit %q", from))
	}
	tu, ok := units.Parse(to)
	if !ok {
		return 0, host.Fail("ConvertLength", fmt.Errorf("unknown unit %q", to))
	}
	return value / fu.PerCentimeter() * tu.PerCentimeter(), nil
}

// Parameters implements host.Design.
func (d *Design) Parameters() ([]host.Parameter, error) {
	if d.ParamsErr != nil {
		return nil, host.Fail("Parameters", d.ParamsErr)
	}
	return d.Params, nil
}

// Components implements host.Design.
func (d *Design) Components() ([]host.Component, error) {
	out := make([]host.Component, 0, len(d.Comps))
	for _, c := range d.Comps {
		out = append(out, c)
	}
	return out, nil
}

// AddComponent appends a component and returns it.
func (d *Design) AddComponent(c *Component) *Component {
	d.Comps = append(d.Comps, c)
	return c
}

// ---------------------------------------------------------------------------
// Component
// ---------------------------------------------------------------------------

// Component holds sketches, features and bodies in declaration order.
type Component struct {
	Label       string
	SketchList  []*Sketch
	FeatureList []host.Feature
	BodyList    []*Body

	SketchesErr error
	FeaturesErr error
	BodiesErr   error
}

// NewComponent creates an empty component.
func NewComponent(name string) *Component {
	return &Component{Label: name}
}

func (c *Component) Name() string { return c.Label }

// Sketches implements host.Component.
func (c *Component) Sketches() ([]host.Sketch, error) {
	if c.SketchesErr != nil {
		return nil, host.Fail("Sketches", c.SketchesErr)
	}
	out := make([]host.Sketch, 0, len(c.SketchList))
	for _, s := range c.SketchList {
		out = append(out, s)
	}
	return out, nil
}

// Features implements host.Component.
func (c *Component) Features() ([]host.Feature, error) {
	if c.FeaturesErr != nil {
		return nil, host.Fail("Features", c.FeaturesErr)
	}
	return c.FeatureList, nil
}

// Bodies implements host.Component.
func (c *Component) Bodies() ([]host.Body, error) {
	if c.BodiesErr != nil {
		return nil, host.Fail("Bodies", c.BodiesErr)
	}
	return bodies(c.BodyList), nil
}

// AddSketch appends a sketch.
func (c *Component) AddSketch(s *Sketch) *Sketch {
	c.SketchList = append(c.SketchList, s)
	return s
}

// AddFeature appends a feature to the feature sequence.
func (c *Component) AddFeature(f host.Feature) host.Feature {
	c.FeatureList = append(c.FeatureList, f)
	return f
}

// AddBody appends a body.
func (c *Component) AddBody(b *Body) *Body {
	c.BodyList = append(c.BodyList, b)
	return b
}

// Sketch returns the sketch with the given name, or nil.
func (c *Component) Sketch(name string) *Sketch {
	for _, s := range c.SketchList {
		if s.Label == name {
			return s
		}
	}
	return nil
}

// Feature returns the feature with the given name, or nil.
func (c *Component) Feature(name string) host.Feature {
	for _, f := range c.FeatureList {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// Body returns the body with the given name, or nil.
func (c *Component) Body(name string) *Body {
	for _, b := range c.BodyList {
		if b.Label == name {
			return b
		}
	}
	return nil
}

func bodies(list []*Body) []host.Body {
	out := make([]host.Body, 0, len(list))
	for _, b := range list {
		out = append(out, b)
	}
	return out
}

// token derives a stable token from an object kind and name.
func token(kind, name string) string {
	return kind + "/" + name
}

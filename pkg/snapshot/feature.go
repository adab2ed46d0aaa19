package snapshot

import (
	"github.com/chazu/kclexport/pkg/host"
	"gonum.org/v1/gonum/spatial/r3"
)

// profile is a sketch region consumed by a feature.
type profile struct {
	sketch *Sketch
}

func (p profile) ParentSketch() (host.Sketch, error) {
	if p.sketch == nil {
		return nil, host.Fail("ParentSketch", host.ErrUnavailable)
	}
	return p.sketch, nil
}

// sweep is shared by extrude and revolve features.
type sweep struct {
	Label       string
	Sketches    []*Sketch
	ProfilesErr error
	Ext         host.Extent
	ExtentErr   error
	BodyList    []*Body
	BodiesErr   error
}

func (s *sweep) Name() string { return s.Label }

func (s *sweep) Profiles() ([]host.Profile, error) {
	if s.ProfilesErr != nil {
		return nil, host.Fail("Profiles", s.ProfilesErr)
	}
	out := make([]host.Profile, 0, len(s.Sketches))
	for _, sk := range s.Sketches {
		out = append(out, profile{sketch: sk})
	}
	return out, nil
}

func (s *sweep) Extent() (host.Extent, error) {
	if s.ExtentErr != nil {
		return nil, host.Fail("Extent", s.ExtentErr)
	}
	if s.Ext == nil {
		return nil, host.Fail("Extent", host.ErrUnavailable)
	}
	return s.Ext, nil
}

func (s *sweep) Bodies() ([]host.Body, error) {
	if s.BodiesErr != nil {
		return nil, host.Fail("Bodies", s.BodiesErr)
	}
	return bodies(s.BodyList), nil
}

// Extrude is an extrude feature.
type Extrude struct {
	sweep
}

// NewExtrude creates an extrude of sketch with the given extent.
// A nil sketch yields a profile without parent sketch.
func NewExtrude(name string, sketch *Sketch, extent host.Extent) *Extrude {
	return &Extrude{sweep{Label: name, Sketches: []*Sketch{sketch}, Ext: extent}}
}

func (e *Extrude) Token() string { return token("extrude", e.Label) }

// Revolve is a revolve feature.
type Revolve struct {
	sweep
	AxisDir r3.Vec
	AxisErr error
}

// NewRevolve creates a revolve of sketch with the given extent about the
// sketch Y axis.
func NewRevolve(name string, sketch *Sketch, extent host.Extent) *Revolve {
	return &Revolve{
		sweep:   sweep{Label: name, Sketches: []*Sketch{sketch}, Ext: extent},
		AxisDir: r3.Vec{Y: 1},
	}
}

func (r *Revolve) Token() string { return token("revolve", r.Label) }

// Axis implements host.Revolve.
func (r *Revolve) Axis() (r3.Vec, error) {
	if r.AxisErr != nil {
		return r3.Vec{}, host.Fail("Axis", r.AxisErr)
	}
	return r.AxisDir, nil
}

// Combine is a boolean combine feature.
type Combine struct {
	Label     string
	Op        host.Operation
	OpErr     error
	Target    *Body
	TargetErr error
	Tools     []*Body
	ToolsErr  error
}

// NewCombine creates a combine feature.
func NewCombine(name string, op host.Operation, target *Body, tools ...*Body) *Combine {
	return &Combine{Label: name, Op: op, Target: target, Tools: tools}
}

func (c *Combine) Token() string { return token("combine", c.Label) }
func (c *Combine) Name() string  { return c.Label }

// Operation implements host.Combine.
func (c *Combine) Operation() (host.Operation, error) {
	if c.OpErr != nil {
		return host.OpUnknown, host.Fail("Operation", c.OpErr)
	}
	return c.Op, nil
}

// TargetBody implements host.Combine.
func (c *Combine) TargetBody() (host.Body, error) {
	if c.TargetErr != nil {
		return nil, host.Fail("TargetBody", c.TargetErr)
	}
	if c.Target == nil {
		return nil, host.Fail("TargetBody", host.ErrUnavailable)
	}
	return c.Target, nil
}

// ToolBodies implements host.Combine.
func (c *Combine) ToolBodies() ([]host.Body, error) {
	if c.ToolsErr != nil {
		return nil, host.Fail("ToolBodies", c.ToolsErr)
	}
	return bodies(c.Tools), nil
}

// Other is a feature kind the translator does not model.
type Other struct {
	Label string
	Kind  string
}

func (o *Other) Token() string { return token(o.Kind, o.Label) }
func (o *Other) Name() string  { return o.Label }

// Body is a solid body.
type Body struct {
	Label      string
	Creator    host.Feature
	CreatorErr error
}

// NewBody creates a body created by feature (which may be nil).
func NewBody(name string, creator host.Feature) *Body {
	return &Body{Label: name, Creator: creator}
}

func (b *Body) Token() string { return token("body", b.Label) }
func (b *Body) Name() string  { return b.Label }

// CreatedBy implements host.Body.
func (b *Body) CreatedBy() (host.Feature, error) {
	if b.CreatorErr != nil {
		return nil, host.Fail("CreatedBy", b.CreatorErr)
	}
	if b.Creator == nil {
		return nil, host.Fail("CreatedBy", host.ErrUnavailable)
	}
	return b.Creator, nil
}

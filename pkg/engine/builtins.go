package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/snapshot"
	"github.com/chazu/kclexport/pkg/units"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values between builtins
// ---------------------------------------------------------------------------

// sexpCurve wraps a sketch curve.
type sexpCurve struct {
	curve host.Curve
}

func (c *sexpCurve) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(curve %T)", c.curve)
}
func (c *sexpCurve) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a sketch plane reference.
type sexpPlane struct {
	plane *snapshot.Plane
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(plane %q)", p.plane.Describe())
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

// sexpSketch wraps a finished sketch waiting for its component.
type sexpSketch struct {
	sketch *snapshot.Sketch
}

func (s *sexpSketch) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(sketch %q)", s.sketch.Label)
}
func (s *sexpSketch) Type() *zygo.RegisteredType { return nil }

// sexpFeature wraps a feature whose references to sketches and bodies are
// still names. They are resolved when the enclosing component is built.
type sexpFeature struct {
	feature host.Feature

	sketch    string
	hasSketch bool
	bodies    []string

	target string
	tools  []string
}

func (f *sexpFeature) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(feature %q)", f.feature.Name())
}
func (f *sexpFeature) Type() *zygo.RegisteredType { return nil }

// sexpBody wraps a body declaration.
type sexpBody struct {
	name       string
	creator    string
	creatorErr bool
	hasCreator bool
}

func (b *sexpBody) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(body %q)", b.name)
}
func (b *sexpBody) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Builder
// ---------------------------------------------------------------------------

// builder accumulates the design while a description runs.
type builder struct {
	design    *snapshot.Design
	hasDesign bool
	warnings  []EvalWarning
}

// newBuilder starts from an untitled millimetre design. A description
// without a design form therefore has no document name.
func newBuilder() *builder {
	return &builder{design: snapshot.New("")}
}

// checkKeywords records a warning for every keyword form does not accept.
func (b *builder) checkKeywords(form string, pa kwArgs, allowed ...string) {
	for _, k := range pa.unknown(allowed...) {
		b.warnings = append(b.warnings, EvalWarning{Form: form, Message: "unknown keyword :" + k})
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the modelling builtins into env. They populate
// b.design during evaluation.
//
// Source must be passed through preprocessSource first so that :keyword
// tokens reach the builtins as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	env.AddFunction("design", b.designFn)
	env.AddFunction("parameter", b.parameterFn)
	env.AddFunction("component", b.componentFn)

	env.AddFunction("sketch", sketchFn(b))
	env.AddFunction("origin_plane", originPlaneFn)
	env.AddFunction("face_plane", normalPlaneFn("face_plane", snapshot.FacePlane))
	env.AddFunction("construction_plane", normalPlaneFn("construction_plane", snapshot.ConstructionPlane))
	env.AddFunction("named_plane", namedPlaneFn)

	env.AddFunction("line", lineFn)
	env.AddFunction("arc", arcFn(b))
	env.AddFunction("circle", circleFn)
	env.AddFunction("spline", splineFn)

	env.AddFunction("extrude", extrudeFn(b))
	env.AddFunction("revolve", revolveFn(b))
	env.AddFunction("combine", combineFn(b))
	env.AddFunction("feature", otherFn(b))
	env.AddFunction("body", bodyFn(b))
}

// ---------------------------------------------------------------------------
// (design "Bracket" :units :in :unit-name "in" :solid true)
// ---------------------------------------------------------------------------

func (b *builder) designFn(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if b.hasDesign {
		return zygo.SexpNull, fmt.Errorf("design: declared more than once")
	}
	b.hasDesign = true

	pa := parseArgs(args)
	b.checkKeywords("design", pa, "units", "unit-name", "scale", "solid", "parameters")
	d := b.design

	title, err := pa.name("design")
	if err != nil {
		return zygo.SexpNull, err
	}
	d.Title = title

	if pa.isUnavailable("units") {
		d.UnitsErr = host.ErrUnavailable
	} else if v, ok := pa.kw["units"]; ok {
		s, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: units: %w", err)
		}
		u, ok := units.Parse(s)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("design: units: unknown unit %q", s)
		}
		d.Units = u.Enum()
		d.UnitName = u.String()
	}

	if pa.isUnavailable("unit-name") {
		d.UnitNameErr = host.ErrUnavailable
	} else if v, ok := pa.kw["unit-name"]; ok {
		s, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: unit-name: %w", err)
		}
		d.UnitName = s
	}

	if v, ok := pa.kw["scale"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: scale: %w", err)
		}
		d.Scale = f
	}
	if v, ok := pa.kw["solid"]; ok {
		solid, err := toBool(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: solid: %w", err)
		}
		d.Solid = solid
	}
	if pa.isUnavailable("parameters") {
		d.ParamsErr = host.ErrUnavailable
	}
	return zygo.SexpNull, nil
}

// ---------------------------------------------------------------------------
// (parameter "width" 2.5 :unit "cm" :comment "overall" :expression "25 mm")
// ---------------------------------------------------------------------------

func (b *builder) parameterFn(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	b.checkKeywords("parameter", pa, "unit", "comment", "expression", "model")

	pname, err := pa.name("parameter")
	if err != nil {
		return zygo.SexpNull, err
	}
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("parameter %s: expected name and value", pname)
	}
	value, err := toFloat64(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("parameter %s: value: %w", pname, err)
	}
	p := host.Parameter{Name: pname, Value: value, User: true}

	for _, field := range []struct {
		kw  string
		dst *string
	}{
		{"unit", &p.Unit},
		{"comment", &p.Comment},
		{"expression", &p.Expression},
	} {
		if v, ok := pa.kw[field.kw]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("parameter %s: %s: %w", pname, field.kw, err)
			}
			*field.dst = s
		}
	}
	if v, ok := pa.kw["model"]; ok {
		model, err := toBool(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("parameter %s: model: %w", pname, err)
		}
		p.User = !model
	}

	b.design.Params = append(b.design.Params, p)
	return zygo.SexpNull, nil
}

// ---------------------------------------------------------------------------
// Sketches and planes
// ---------------------------------------------------------------------------

// (sketch "Profile" :plane :xz (line [0 0] [1 0]) ...)
func sketchFn(b *builder) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b.checkKeywords("sketch", pa, "plane", "curves")

		sname, err := pa.name("sketch")
		if err != nil {
			return zygo.SexpNull, err
		}
		sk := snapshot.NewSketch(sname, snapshot.OriginPlane("xy"))

		if pa.isUnavailable("plane") {
			sk.PlaneErr = host.ErrUnavailable
		} else if v, ok := pa.kw["plane"]; ok {
			p, err := toPlane(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch %s: plane: %w", sname, err)
			}
			sk.Plane = p
		}
		if pa.isUnavailable("curves") {
			sk.CurvesErr = host.ErrUnavailable
		}

		curves, err := collectCurves(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sketch %s: %w", sname, err)
		}
		sk.CurveList = curves
		return &sexpSketch{sketch: sk}, nil
	}
}

// collectCurves flattens curves and lists of curves, so helper functions
// can return a whole loop at once.
func collectCurves(args []zygo.Sexp) ([]host.Curve, error) {
	var out []host.Curve
	for _, arg := range args {
		if c, ok := arg.(*sexpCurve); ok {
			out = append(out, c.curve)
			continue
		}
		items, err := sexpListToSlice(arg)
		if err != nil {
			return nil, fmt.Errorf("expected curve, got %s", arg.SexpString(nil))
		}
		nested, err := collectCurves(items)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

// toPlane accepts :xy, :xz, :yz or a plane form.
func toPlane(s zygo.Sexp) (*snapshot.Plane, error) {
	if p, ok := s.(*sexpPlane); ok {
		return p.plane, nil
	}
	kw, err := toKeywordString(s)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(kw) {
	case "xy", "xz", "yz":
		return snapshot.OriginPlane(kw), nil
	}
	return nil, fmt.Errorf("unknown origin plane %q, expected xy, xz or yz", kw)
}

// (origin-plane :xz)
func originPlaneFn(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("origin_plane: expected 1 argument, got %d", len(args))
	}
	p, err := toPlane(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("origin_plane: %w", err)
	}
	return &sexpPlane{plane: p}, nil
}

// (face-plane [0 0 1]) and (construction-plane [0 1 0])
func normalPlaneFn(form string, mk func(r3.Vec) *snapshot.Plane) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s: expected normal, got %d arguments", form, len(args))
		}
		n, err := toVec(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: normal: %w", form, err)
		}
		return &sexpPlane{plane: mk(n)}, nil
	}
}

// (named-plane "Offset plane 2")
func namedPlaneFn(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("named_plane: expected description, got %d arguments", len(args))
	}
	desc, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("named_plane: %w", err)
	}
	return &sexpPlane{plane: snapshot.NamedPlane(desc)}, nil
}

// ---------------------------------------------------------------------------
// Curves
// ---------------------------------------------------------------------------

// (line [x1 y1] [x2 y2])
func lineFn(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("line: expected 2 points, got %d arguments", len(args))
	}
	start, err := toVec(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("line: start: %w", err)
	}
	end, err := toVec(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("line: end: %w", err)
	}
	return &sexpCurve{curve: host.Line{Start: start, End: end}}, nil
}

// (arc :center [0 0] :radius 1 :start-angle 0 :end-angle 90)
//
// Angles are in degrees, counter-clockwise from +X. The end points are
// derived from center, radius and angles.
func arcFn(b *builder) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b.checkKeywords("arc", pa, "center", "radius", "start-angle", "end-angle")

		var a host.Arc
		v, ok := pa.kw["center"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("arc: missing :center")
		}
		center, err := toVec(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: center: %w", err)
		}
		a.Center = center

		nums := map[string]*float64{
			"radius":      &a.Radius,
			"start-angle": &a.StartAngle,
			"end-angle":   &a.EndAngle,
		}
		for _, k := range []string{"radius", "start-angle", "end-angle"} {
			v, ok := pa.kw[k]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("arc: missing :%s", k)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("arc: %s: %w", k, err)
			}
			*nums[k] = f
		}
		if a.Radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("arc: radius must be positive, got %g", a.Radius)
		}

		a.StartAngle *= math.Pi / 180
		a.EndAngle *= math.Pi / 180
		a.Start = polar(center, a.Radius, a.StartAngle)
		a.End = polar(center, a.Radius, a.EndAngle)
		return &sexpCurve{curve: a}, nil
	}
}

func polar(c r3.Vec, r, theta float64) r3.Vec {
	return r3.Vec{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta), Z: c.Z}
}

// (circle [cx cy] r)
func circleFn(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("circle: expected center and radius, got %d arguments", len(args))
	}
	center, err := toVec(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("circle: center: %w", err)
	}
	r, err := toFloat64(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("circle: radius: %w", err)
	}
	if r <= 0 {
		return zygo.SexpNull, fmt.Errorf("circle: radius must be positive, got %g", r)
	}
	return &sexpCurve{curve: host.Circle{Center: center, Radius: r}}, nil
}

// (spline [x y] [x y] ...)
func splineFn(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 2 {
		return zygo.SexpNull, fmt.Errorf("spline: expected at least 2 fit points, got %d", len(args))
	}
	s := host.Spline{FitPoints: make([]r3.Vec, 0, len(args))}
	for i, arg := range args {
		p, err := toVec(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("spline: point %d: %w", i, err)
		}
		s.FitPoints = append(s.FitPoints, p)
	}
	return &sexpCurve{curve: s}, nil
}

// ---------------------------------------------------------------------------
// Features
// ---------------------------------------------------------------------------

// sweepRefs reads the keywords shared by extrude and revolve.
func sweepRefs(form, fname string, pa kwArgs, f *sexpFeature) error {
	if v, ok := pa.kw["sketch"]; ok {
		s, err := toString(v)
		if err != nil {
			return fmt.Errorf("%s %s: sketch: %w", form, fname, err)
		}
		f.sketch, f.hasSketch = s, true
	}
	if v, ok := pa.kw["bodies"]; ok && !pa.isUnavailable("bodies") {
		names, err := toNames(v)
		if err != nil {
			return fmt.Errorf("%s %s: bodies: %w", form, fname, err)
		}
		f.bodies = names
	}
	return nil
}

// (extrude "Extrude1" :sketch "Profile" :distance 1 :bodies ["Body1"])
// (extrude "Cut1" :sketch "Hole" :extent :through-all)
func extrudeFn(b *builder) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b.checkKeywords("extrude", pa, "sketch", "extent", "distance", "distance-two", "bodies", "profiles")

		fname, err := pa.name("extrude")
		if err != nil {
			return zygo.SexpNull, err
		}
		e := snapshot.NewExtrude(fname, nil, nil)
		f := &sexpFeature{feature: e}
		if err := sweepRefs("extrude", fname, pa, f); err != nil {
			return zygo.SexpNull, err
		}

		ext, err := toExtrudeExtent(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude %s: %w", fname, err)
		}
		e.Ext = ext
		if pa.isUnavailable("extent") {
			e.ExtentErr = host.ErrUnavailable
		}
		if pa.isUnavailable("profiles") {
			e.ProfilesErr = host.ErrUnavailable
		}
		if pa.isUnavailable("bodies") {
			e.BodiesErr = host.ErrUnavailable
		}
		return f, nil
	}
}

func toExtrudeExtent(pa kwArgs) (host.Extent, error) {
	kind := "distance"
	if v, ok := pa.kw["extent"]; ok {
		s, err := toKeywordString(v)
		if err != nil {
			return nil, fmt.Errorf("extent: %w", err)
		}
		kind = s
	}
	distance := func(k string) (float64, error) {
		v, ok := pa.kw[k]
		if !ok {
			return 0, fmt.Errorf("%s extent: missing :%s", kind, k)
		}
		f, err := toFloat64(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", k, err)
		}
		return f, nil
	}

	switch kind {
	case unavailable:
		return nil, nil
	case "distance":
		d, err := distance("distance")
		return host.DistanceExtent{Distance: d}, err
	case "symmetric":
		d, err := distance("distance")
		return host.SymmetricExtent{Distance: d}, err
	case "two-sides":
		d1, err := distance("distance")
		if err != nil {
			return nil, err
		}
		d2, err := distance("distance-two")
		return host.TwoSidesExtent{DistanceOne: d1, DistanceTwo: d2}, err
	case "through-all":
		return host.ThroughAllExtent{}, nil
	case "to-entity":
		return host.ToEntityExtent{}, nil
	}
	return host.UnknownExtent{Type: kind}, nil
}

// (revolve "Revolve1" :sketch "Profile" :angle 180 :axis [0 1 0])
// (revolve "Revolve2" :sketch "Profile" :extent :full-sweep)
func revolveFn(b *builder) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b.checkKeywords("revolve", pa, "sketch", "extent", "angle", "axis", "bodies", "profiles")

		fname, err := pa.name("revolve")
		if err != nil {
			return zygo.SexpNull, err
		}
		r := snapshot.NewRevolve(fname, nil, nil)
		f := &sexpFeature{feature: r}
		if err := sweepRefs("revolve", fname, pa, f); err != nil {
			return zygo.SexpNull, err
		}

		if v, ok := pa.kw["angle"]; ok {
			deg, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve %s: angle: %w", fname, err)
			}
			r.Ext = host.AngleExtent{Angle: deg * math.Pi / 180}
		}
		if v, ok := pa.kw["extent"]; ok {
			kind, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve %s: extent: %w", fname, err)
			}
			switch kind {
			case unavailable:
				r.ExtentErr = host.ErrUnavailable
			case "full-sweep":
				r.Ext = host.FullSweepExtent{}
			case "angle":
				if r.Ext == nil {
					return zygo.SexpNull, fmt.Errorf("revolve %s: angle extent: missing :angle", fname)
				}
			default:
				r.Ext = host.UnknownExtent{Type: kind}
			}
		}

		if pa.isUnavailable("axis") {
			r.AxisErr = host.ErrUnavailable
		} else if v, ok := pa.kw["axis"]; ok {
			axis, err := toVec(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve %s: axis: %w", fname, err)
			}
			r.AxisDir = axis
		}
		if pa.isUnavailable("profiles") {
			r.ProfilesErr = host.ErrUnavailable
		}
		if pa.isUnavailable("bodies") {
			r.BodiesErr = host.ErrUnavailable
		}
		return f, nil
	}
}

// (combine "Combine1" :operation :cut :target "Body1" :tools ["Body2"])
func combineFn(b *builder) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b.checkKeywords("combine", pa, "operation", "target", "tools")

		fname, err := pa.name("combine")
		if err != nil {
			return zygo.SexpNull, err
		}
		c := snapshot.NewCombine(fname, host.OpUnknown, nil)
		f := &sexpFeature{feature: c}

		if v, ok := pa.kw["operation"]; ok {
			kind, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine %s: operation: %w", fname, err)
			}
			op, err := toOperation(kind)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine %s: %w", fname, err)
			}
			if kind == unavailable {
				c.OpErr = host.ErrUnavailable
			}
			c.Op = op
		}

		if pa.isUnavailable("target") {
			c.TargetErr = host.ErrUnavailable
		} else if v, ok := pa.kw["target"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine %s: target: %w", fname, err)
			}
			f.target = s
		}

		if pa.isUnavailable("tools") {
			c.ToolsErr = host.ErrUnavailable
		} else if v, ok := pa.kw["tools"]; ok {
			names, err := toNames(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine %s: tools: %w", fname, err)
			}
			f.tools = names
		}
		return f, nil
	}
}

func toOperation(kind string) (host.Operation, error) {
	for op := host.OpJoin; op <= host.OpNewComponent; op++ {
		if op.String() == kind {
			return op, nil
		}
	}
	if kind == unavailable {
		return host.OpUnknown, nil
	}
	return host.OpUnknown, fmt.Errorf("unknown operation %q", kind)
}

// (feature "Fillet1" :kind "fillet")
func otherFn(b *builder) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b.checkKeywords("feature", pa, "kind")

		fname, err := pa.name("feature")
		if err != nil {
			return zygo.SexpNull, err
		}
		kind := "feature"
		if v, ok := pa.kw["kind"]; ok {
			if kind, err = toKeywordString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("feature %s: kind: %w", fname, err)
			}
		}
		return &sexpFeature{feature: &snapshot.Other{Label: fname, Kind: kind}}, nil
	}
}

// (body "Body1" :created-by "Extrude1")
func bodyFn(b *builder) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		b.checkKeywords("body", pa, "created-by")

		bname, err := pa.name("body")
		if err != nil {
			return zygo.SexpNull, err
		}
		body := &sexpBody{name: bname}
		if pa.isUnavailable("created-by") {
			body.creatorErr = true
		} else if v, ok := pa.kw["created-by"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("body %s: created-by: %w", bname, err)
			}
			body.creator, body.hasCreator = s, true
		}
		return body, nil
	}
}

// ---------------------------------------------------------------------------
// (component "Root" :bodies :unavailable (sketch ...) (extrude ...) ...)
// ---------------------------------------------------------------------------

func (b *builder) componentFn(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	b.checkKeywords("component", pa, "sketches", "features", "bodies")

	cname, err := pa.name("component")
	if err != nil {
		return zygo.SexpNull, err
	}
	comp := snapshot.NewComponent(cname)

	var (
		features []*sexpFeature
		decls    []*sexpBody
	)
	for i, arg := range pa.positional[1:] {
		switch v := arg.(type) {
		case *sexpSketch:
			if comp.Sketch(v.sketch.Label) != nil {
				return zygo.SexpNull, fmt.Errorf("component %s: duplicate sketch %q", cname, v.sketch.Label)
			}
			comp.AddSketch(v.sketch)
		case *sexpFeature:
			if comp.Feature(v.feature.Name()) != nil {
				return zygo.SexpNull, fmt.Errorf("component %s: duplicate feature %q", cname, v.feature.Name())
			}
			comp.AddFeature(v.feature)
			features = append(features, v)
		case *sexpBody:
			decls = append(decls, v)
		default:
			return zygo.SexpNull, fmt.Errorf("component %s: item %d: expected sketch, feature or body, got %s", cname, i+1, arg.SexpString(nil))
		}
	}

	if err := resolveComponent(comp, features, decls); err != nil {
		return zygo.SexpNull, fmt.Errorf("component %s: %w", cname, err)
	}

	for k, dst := range map[string]*error{
		"sketches": &comp.SketchesErr,
		"features": &comp.FeaturesErr,
		"bodies":   &comp.BodiesErr,
	} {
		if pa.isUnavailable(k) {
			*dst = host.ErrUnavailable
		}
	}

	b.design.AddComponent(comp)
	return zygo.SexpNull, nil
}

// resolveComponent turns the names held by features and body declarations
// into references within comp. Bodies listed by a feature are created in
// feature order; body declarations then add or override creators.
func resolveComponent(comp *snapshot.Component, features []*sexpFeature, decls []*sexpBody) error {
	for _, f := range features {
		var (
			sketches []*snapshot.Sketch
			produced []*snapshot.Body
		)
		if f.hasSketch {
			sk := comp.Sketch(f.sketch)
			if sk == nil {
				return fmt.Errorf("%s: unknown sketch %q", f.feature.Name(), f.sketch)
			}
			sketches = append(sketches, sk)
		} else {
			sketches = append(sketches, nil)
		}
		for _, n := range f.bodies {
			body := comp.Body(n)
			if body == nil {
				body = comp.AddBody(snapshot.NewBody(n, f.feature))
			}
			produced = append(produced, body)
		}

		switch v := f.feature.(type) {
		case *snapshot.Extrude:
			v.Sketches, v.BodyList = sketches, produced
		case *snapshot.Revolve:
			v.Sketches, v.BodyList = sketches, produced
		}
	}

	for _, d := range decls {
		body := comp.Body(d.name)
		if body == nil {
			body = comp.AddBody(snapshot.NewBody(d.name, nil))
		}
		switch {
		case d.creatorErr:
			body.CreatorErr = host.ErrUnavailable
		case d.hasCreator:
			creator := comp.Feature(d.creator)
			if creator == nil {
				return fmt.Errorf("body %s: unknown feature %q", d.name, d.creator)
			}
			body.Creator = creator
		}
	}

	for _, f := range features {
		c, ok := f.feature.(*snapshot.Combine)
		if !ok {
			continue
		}
		if f.target != "" {
			if c.Target = comp.Body(f.target); c.Target == nil {
				return fmt.Errorf("%s: unknown target body %q", c.Label, f.target)
			}
		}
		for _, n := range f.tools {
			tool := comp.Body(n)
			if tool == nil {
				return fmt.Errorf("%s: unknown tool body %q", c.Label, n)
			}
			c.Tools = append(c.Tools, tool)
		}
	}
	return nil
}

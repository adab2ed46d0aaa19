package engine

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/snapshot"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Preprocessing
// ---------------------------------------------------------------------------

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(extrude "E" :distance 1)`,
			expect: `(extrude "E" "__kw_distance" 1)`,
		},
		{
			name:   "hyphenated keyword",
			input:  `(arc :start-angle 0)`,
			expect: `(arc "__kw_start-angle" 0)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw a-b`",
			expect: "`raw :kw a-b`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(origin-plane :xz)`,
			expect: `(origin_plane "__kw_xz")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `[x -1]`,
			expect: `[x -1]`,
		},
		{
			name:   "comment converted to // style",
			input:  ";; comment with :keyword\n(a)",
			expect: "// comment with :keyword\n(a)",
		},
		{
			name:   "comment at end of input",
			input:  `; trailing`,
			expect: `// trailing`,
		},
		{
			name:   "unterminated string",
			input:  `"abc`,
			expect: `"abc`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q)\n  got:  %q\n  want: %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpStr{S: "Extrude1"},
		&zygo.SexpStr{S: kwPrefix + "distance"},
		&zygo.SexpInt{Val: 3},
		&zygo.SexpStr{S: kwPrefix + "bodies"},
		&zygo.SexpStr{S: kwPrefix + unavailable},
		&zygo.SexpStr{S: kwPrefix + "flag"},
	}
	pa := parseArgs(args)

	if len(pa.positional) != 1 {
		t.Fatalf("positional = %d, want 1", len(pa.positional))
	}
	if f, err := toFloat64(pa.kw["distance"]); err != nil || f != 3 {
		t.Errorf("distance = %v, %v", f, err)
	}
	if !pa.isUnavailable("bodies") {
		t.Error("bodies should be unavailable")
	}
	if pa.isUnavailable("distance") || pa.isUnavailable("missing") {
		t.Error("only :unavailable values are unavailable")
	}
	if pa.kw["flag"] != zygo.SexpNull {
		t.Errorf("trailing keyword = %v, want null", pa.kw["flag"])
	}
	unknown := pa.unknown("distance", "bodies")
	if len(unknown) != 1 || unknown[0] != "flag" {
		t.Errorf("unknown = %v", unknown)
	}
}

func TestToVec(t *testing.T) {
	v, err := toVec(&zygo.SexpArray{Val: []zygo.Sexp{&zygo.SexpInt{Val: 1}, &zygo.SexpFloat{Val: 2.5}}})
	if err != nil {
		t.Fatal(err)
	}
	if v.X != 1 || v.Y != 2.5 || v.Z != 0 {
		t.Errorf("toVec = %v", v)
	}
	if _, err := toVec(&zygo.SexpArray{Val: []zygo.Sexp{&zygo.SexpInt{Val: 1}}}); err == nil {
		t.Error("expected error for one coordinate")
	}
	if _, err := toVec(&zygo.SexpStr{S: "x"}); err == nil {
		t.Error("expected error for string")
	}
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

func mustDesign(t *testing.T, source string) *snapshot.Design {
	t.Helper()
	res := evaluate(t, source)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	return res.Design
}

func mustFail(t *testing.T, source, want string) {
	t.Helper()
	res := evaluate(t, source)
	if len(res.Errors) == 0 {
		t.Fatalf("expected eval error containing %q", want)
	}
	if !strings.Contains(res.Errors[0].Message, want) {
		t.Errorf("error = %q, want containing %q", res.Errors[0].Message, want)
	}
}

func TestDesignForm(t *testing.T) {
	d := mustDesign(t, `(design "Bracket" :units :in :solid true)`)
	if d.Title != "Bracket" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Units != host.UnitInch || d.UnitName != "in" {
		t.Errorf("units = %v %q", d.Units, d.UnitName)
	}
	if !d.Solid {
		t.Error("expected solid model")
	}

	d = mustDesign(t, `(design "Mesh" :solid false :units :unavailable :unit-name :unavailable :parameters :unavailable :scale 1)`)
	if d.Solid {
		t.Error("expected non-solid design")
	}
	if !errors.Is(d.UnitsErr, host.ErrUnavailable) || !errors.Is(d.UnitNameErr, host.ErrUnavailable) {
		t.Errorf("unit errors = %v, %v", d.UnitsErr, d.UnitNameErr)
	}
	if !errors.Is(d.ParamsErr, host.ErrUnavailable) {
		t.Errorf("params err = %v", d.ParamsErr)
	}
	if d.Scale != 1 {
		t.Errorf("scale = %v", d.Scale)
	}

	mustFail(t, `(design "A") (design "B")`, "declared more than once")
	mustFail(t, `(design "A" :units :furlong)`, "unknown unit")
	mustFail(t, `(design)`, "missing name")
}

func TestParameterForm(t *testing.T) {
	d := mustDesign(t, `
(parameter "width" 2.5 :unit "cm" :comment "overall" :expression "25 mm")
(parameter "d1" 1 :unit "cm" :model true)
`)
	if len(d.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(d.Params))
	}
	w := d.Params[0]
	if w.Name != "width" || w.Value != 2.5 || w.Unit != "cm" || w.Comment != "overall" || w.Expression != "25 mm" || !w.User {
		t.Errorf("width = %+v", w)
	}
	if d.Params[1].User {
		t.Error("model parameter should not be a user parameter")
	}

	mustFail(t, `(parameter "x")`, "expected name and value")
	mustFail(t, `(parameter "x" "big")`, "expected number")
}

func TestSketchForm(t *testing.T) {
	d := mustDesign(t, `
(component "Root"
  (sketch "Profile" :plane :xz
    (line [0 0] [2 0])
    (arc :center [0 0] :radius 2 :start-angle 0 :end-angle 90)
    (circle [5 5] 1)
    (spline [0 0] [1 1] [2 0]))
  (sketch "Face" :plane (face-plane [0 0 1]))
  (sketch "Offset" :plane (named-plane "Offset plane"))
  (sketch "Lost" :plane :unavailable :curves :unavailable))
`)
	comp := d.Comps[0]
	sk := comp.Sketch("Profile")
	if sk == nil {
		t.Fatal("missing sketch Profile")
	}
	if len(sk.CurveList) != 4 {
		t.Fatalf("curves = %d, want 4", len(sk.CurveList))
	}
	if n, err := sk.Plane.Normal(); err != nil || n.Y != 1 {
		t.Errorf("plane normal = %v, %v", n, err)
	}

	arc, ok := sk.CurveList[1].(host.Arc)
	if !ok {
		t.Fatalf("curve 1 = %T, want Arc", sk.CurveList[1])
	}
	if math.Abs(arc.EndAngle-math.Pi/2) > 1e-12 {
		t.Errorf("end angle = %v", arc.EndAngle)
	}
	if math.Abs(arc.End.X) > 1e-9 || math.Abs(arc.End.Y-2) > 1e-9 {
		t.Errorf("arc end = %v", arc.End)
	}
	if c, ok := sk.CurveList[2].(host.Circle); !ok || c.Radius != 1 {
		t.Errorf("curve 2 = %#v", sk.CurveList[2])
	}

	if comp.Sketch("Face").Plane.Kind() != host.PlaneFace {
		t.Error("Face sketch should be on a face")
	}
	if comp.Sketch("Offset").Plane.Describe() != "Offset plane" {
		t.Error("named plane description lost")
	}
	lost := comp.Sketch("Lost")
	if _, err := lost.ReferencePlane(); err == nil {
		t.Error("expected plane query failure")
	}
	if _, err := lost.Curves(); err == nil {
		t.Error("expected curve query failure")
	}
}

func TestSketchFormErrors(t *testing.T) {
	mustFail(t, `(sketch "S" :plane :ab)`, "unknown origin plane")
	mustFail(t, `(sketch "S" 42)`, "expected curve")
	mustFail(t, `(line [0 0])`, "expected 2 points")
	mustFail(t, `(circle [0 0] 0)`, "radius must be positive")
	mustFail(t, `(arc :center [0 0] :radius 1 :start-angle 0)`, "missing :end-angle")
	mustFail(t, `(spline [0 0])`, "at least 2 fit points")
	mustFail(t, `(component "Root" (sketch "S") (sketch "S"))`, `duplicate sketch "S"`)
}

func TestExtrudeForm(t *testing.T) {
	d := mustDesign(t, `
(component "Root"
  (sketch "S" (circle [0 0] 1))
  (extrude "Plain" :sketch "S" :distance 2 :bodies ["Body1"])
  (extrude "Sym" :sketch "S" :extent :symmetric :distance 4)
  (extrude "Two" :sketch "S" :extent :two-sides :distance 1 :distance-two 3)
  (extrude "Thru" :sketch "S" :extent :through-all)
  (extrude "To" :sketch "S" :extent :to-entity)
  (extrude "Odd" :sketch "S" :extent :taper)
  (extrude "Lost" :extent :unavailable :profiles :unavailable :bodies :unavailable))
`)
	comp := d.Comps[0]
	extent := func(name string) host.Extent {
		t.Helper()
		e, ok := comp.Feature(name).(*snapshot.Extrude)
		if !ok {
			t.Fatalf("%s is %T", name, comp.Feature(name))
		}
		return e.Ext
	}

	if got := extent("Plain"); got != (host.DistanceExtent{Distance: 2}) {
		t.Errorf("Plain = %#v", got)
	}
	if got := extent("Sym"); got != (host.SymmetricExtent{Distance: 4}) {
		t.Errorf("Sym = %#v", got)
	}
	if got := extent("Two"); got != (host.TwoSidesExtent{DistanceOne: 1, DistanceTwo: 3}) {
		t.Errorf("Two = %#v", got)
	}
	if got := extent("Thru"); got != (host.ThroughAllExtent{}) {
		t.Errorf("Thru = %#v", got)
	}
	if got := extent("To"); got != (host.ToEntityExtent{}) {
		t.Errorf("To = %#v", got)
	}
	if got := extent("Odd"); got != (host.UnknownExtent{Type: "taper"}) {
		t.Errorf("Odd = %#v", got)
	}

	plain := comp.Feature("Plain").(*snapshot.Extrude)
	profiles, err := plain.Profiles()
	if err != nil || len(profiles) != 1 {
		t.Fatalf("profiles = %v, %v", profiles, err)
	}
	parent, err := profiles[0].ParentSketch()
	if err != nil || parent.Name() != "S" {
		t.Errorf("parent sketch = %v, %v", parent, err)
	}
	bodies, err := plain.Bodies()
	if err != nil || len(bodies) != 1 || bodies[0].Name() != "Body1" {
		t.Fatalf("bodies = %v, %v", bodies, err)
	}
	creator, err := bodies[0].CreatedBy()
	if err != nil || creator.Token() != plain.Token() {
		t.Errorf("creator = %v, %v", creator, err)
	}

	lost := comp.Feature("Lost").(*snapshot.Extrude)
	if _, err := lost.Extent(); err == nil {
		t.Error("expected extent failure")
	}
	if _, err := lost.Profiles(); err == nil {
		t.Error("expected profile failure")
	}
	if _, err := lost.Bodies(); err == nil {
		t.Error("expected bodies failure")
	}
}

func TestExtrudeWithoutSketchHasOrphanProfile(t *testing.T) {
	d := mustDesign(t, `(component "Root" (extrude "E" :distance 1))`)
	e := d.Comps[0].Feature("E").(*snapshot.Extrude)
	profiles, err := e.Profiles()
	if err != nil || len(profiles) != 1 {
		t.Fatalf("profiles = %v, %v", profiles, err)
	}
	if _, err := profiles[0].ParentSketch(); err == nil {
		t.Error("expected parent sketch failure")
	}
}

func TestExtrudeFormErrors(t *testing.T) {
	mustFail(t, `(extrude "E" :extent :symmetric)`, "missing :distance")
	mustFail(t, `(extrude "E" :extent :two-sides :distance 1)`, "missing :distance-two")
	mustFail(t, `(component "Root" (extrude "E" :sketch "Nope" :distance 1))`, `unknown sketch "Nope"`)
	mustFail(t, `(component "Root" (extrude "E" :distance 1) (extrude "E" :distance 2))`, `duplicate feature "E"`)
}

func TestRevolveForm(t *testing.T) {
	d := mustDesign(t, `
(component "Root"
  (sketch "S" (line [1 0] [2 0]) (line [2 0] [2 1]) (line [2 1] [1 0]))
  (revolve "Half" :sketch "S" :angle 180 :bodies ["Body1"])
  (revolve "Full" :sketch "S" :extent :full-sweep :axis [1 0 0])
  (revolve "Lost" :sketch "S" :extent :unavailable :axis :unavailable))
`)
	comp := d.Comps[0]
	half := comp.Feature("Half").(*snapshot.Revolve)
	ext, ok := half.Ext.(host.AngleExtent)
	if !ok || math.Abs(ext.Angle-math.Pi) > 1e-12 {
		t.Errorf("Half extent = %#v", half.Ext)
	}
	if axis, err := half.Axis(); err != nil || axis.Y != 1 {
		t.Errorf("default axis = %v, %v", axis, err)
	}

	full := comp.Feature("Full").(*snapshot.Revolve)
	if full.Ext != (host.FullSweepExtent{}) {
		t.Errorf("Full extent = %#v", full.Ext)
	}
	if axis, _ := full.Axis(); axis.X != 1 || axis.Y != 0 {
		t.Errorf("Full axis = %v", axis)
	}

	lost := comp.Feature("Lost").(*snapshot.Revolve)
	if _, err := lost.Extent(); err == nil {
		t.Error("expected extent failure")
	}
	if _, err := lost.Axis(); err == nil {
		t.Error("expected axis failure")
	}

	mustFail(t, `(revolve "R" :extent :angle)`, "missing :angle")
}

func TestCombineAndBodyForms(t *testing.T) {
	d := mustDesign(t, `
(component "Root"
  (sketch "A" (circle [0 0] 2))
  (sketch "B" (circle [0 0] 1))
  (extrude "Extrude1" :sketch "A" :distance 1 :bodies ["Body1"])
  (extrude "Extrude2" :sketch "B" :distance 1)
  (body "Body2" :created-by "Extrude2")
  (body "Ghost" :created-by :unavailable)
  (combine "Combine1" :operation :cut :target "Body1" :tools ["Body2"])
  (combine "Combine2" :operation :unavailable :target :unavailable :tools :unavailable)
  (feature "Fillet1" :kind "fillet"))
`)
	comp := d.Comps[0]
	if len(comp.BodyList) != 3 {
		t.Fatalf("bodies = %d, want 3", len(comp.BodyList))
	}
	if comp.BodyList[0].Label != "Body1" || comp.BodyList[1].Label != "Body2" {
		t.Errorf("body order = %s, %s", comp.BodyList[0].Label, comp.BodyList[1].Label)
	}
	if creator, err := comp.Body("Body2").CreatedBy(); err != nil || creator.Name() != "Extrude2" {
		t.Errorf("Body2 creator = %v, %v", creator, err)
	}
	if _, err := comp.Body("Ghost").CreatedBy(); err == nil {
		t.Error("expected creator failure")
	}

	c1 := comp.Feature("Combine1").(*snapshot.Combine)
	if c1.Op != host.OpCut {
		t.Errorf("op = %v", c1.Op)
	}
	if c1.Target != comp.Body("Body1") || len(c1.Tools) != 1 || c1.Tools[0] != comp.Body("Body2") {
		t.Errorf("combine operands = %v %v", c1.Target, c1.Tools)
	}

	c2 := comp.Feature("Combine2").(*snapshot.Combine)
	if _, err := c2.Operation(); err == nil {
		t.Error("expected operation failure")
	}
	if _, err := c2.TargetBody(); err == nil {
		t.Error("expected target failure")
	}
	if _, err := c2.ToolBodies(); err == nil {
		t.Error("expected tools failure")
	}

	other, ok := comp.Feature("Fillet1").(*snapshot.Other)
	if !ok || other.Kind != "fillet" {
		t.Errorf("Fillet1 = %#v", comp.Feature("Fillet1"))
	}
}

func TestCombineFormErrors(t *testing.T) {
	mustFail(t, `(combine "C" :operation :merge)`, `unknown operation "merge"`)
	mustFail(t, `(component "Root" (combine "C" :target "Nope"))`, `unknown target body "Nope"`)
	mustFail(t, `(component "Root" (combine "C" :tools ["Nope"]))`, `unknown tool body "Nope"`)
	mustFail(t, `(component "Root" (body "B" :created-by "Nope"))`, `unknown feature "Nope"`)
	mustFail(t, `(component "Root" 7)`, "expected sketch, feature or body")
}

func TestComponentUnavailableQueries(t *testing.T) {
	d := mustDesign(t, `(component "Root" :sketches :unavailable :features :unavailable :bodies :unavailable)`)
	comp := d.Comps[0]
	if _, err := comp.Sketches(); err == nil {
		t.Error("expected sketches failure")
	}
	if _, err := comp.Features(); err == nil {
		t.Error("expected features failure")
	}
	if _, err := comp.Bodies(); err == nil {
		t.Error("expected bodies failure")
	}
}

func TestUnknownKeywordWarns(t *testing.T) {
	res := evaluate(t, `(design "W" :colour "red") (circle [0 0] 1)`)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", res.Warnings)
	}
	if got := res.Warnings[0].String(); got != "design: unknown keyword :colour" {
		t.Errorf("warning = %q", got)
	}
}

func TestUserFunctionsBuildGeometry(t *testing.T) {
	d := mustDesign(t, `
(defn square [label s]
  (sketch label
    (line [0 0] [s 0]) (line [s 0] [s s]) (line [s s] [0 s]) (line [0 s] [0 0])))
(component "Root" (square "Small" 1) (square "Large" 3))
`)
	comp := d.Comps[0]
	if len(comp.SketchList) != 2 {
		t.Fatalf("sketches = %d, want 2", len(comp.SketchList))
	}
	l := comp.Sketch("Large").CurveList[1].(host.Line)
	if l.End.X != 3 || l.End.Y != 3 {
		t.Errorf("Large edge end = %v", l.End)
	}
}

func TestSketchFlattensCurveLists(t *testing.T) {
	d := mustDesign(t, `
(defn rect [x0 y0 x1 y1]
  [(line [x0 y0] [x1 y0]) (line [x1 y0] [x1 y1]) (line [x1 y1] [x0 y1]) (line [x0 y1] [x0 y0])])
(component "Root" (sketch "Plate" (rect 0 0 6 4) (circle [3 2] 0.4)))
`)
	sk := d.Comps[0].Sketch("Plate")
	if len(sk.CurveList) != 5 {
		t.Fatalf("curves = %d, want 5", len(sk.CurveList))
	}
	if _, ok := sk.CurveList[4].(host.Circle); !ok {
		t.Errorf("last curve = %T, want Circle", sk.CurveList[4])
	}
}

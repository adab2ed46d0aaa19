// Package preview evaluates a parsed script with a geometry kernel. Sketch
// chains become profiles, extrude and revolve produce solids, and the
// boolean calls combine them. Statements the kernel cannot evaluate are
// reported as warnings and skipped.
package preview

import (
	"fmt"
	"math"

	"github.com/chazu/kclexport/pkg/check"
	"github.com/chazu/kclexport/pkg/kernel"
	"github.com/chazu/kclexport/pkg/plane"
)

// ArcStep is the largest angle, in degrees, between two sampled arc points.
const ArcStep = 10.0

// Body is a solid variable of the script.
type Body struct {
	Var      string
	Min, Max [3]float64
	Solid    kernel.Solid
}

// Warning is a statement that could not be evaluated.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Result is the outcome of one preview.
type Result struct {
	Bodies   []Body
	Warnings []Warning
}

type sketchValue struct {
	plane   plane.Canonical
	profile kernel.Profile
}

// evaluator holds the variables bound so far.
type evaluator struct {
	k        kernel.Kernel
	sketches map[string]sketchValue
	solids   map[string]int // index into res.Bodies
	scalars  map[string]float64
	res      *Result
}

// Evaluate runs every assignment of s in order. It never fails; problems
// are collected as warnings.
func Evaluate(s *check.Script, k kernel.Kernel) *Result {
	ev := &evaluator{
		k:        k,
		sketches: make(map[string]sketchValue),
		solids:   make(map[string]int),
		scalars:  make(map[string]float64),
		res:      &Result{},
	}
	for _, st := range s.Statements {
		if st.Assign == nil {
			continue
		}
		if err := ev.assign(st.Assign); err != nil {
			ev.res.Warnings = append(ev.res.Warnings, Warning{Line: st.Pos.Line, Message: err.Error()})
		}
	}
	return ev.res
}

func (ev *evaluator) assign(as *check.Assignment) error {
	head, pipes := as.Value.Head, as.Value.Pipes

	if len(pipes) == 0 {
		if v, ok := head.Float(); ok {
			ev.scalars[as.Name] = v
			return nil
		}
		if head.Ident != "" {
			return ev.alias(as.Name, head.Ident)
		}
	}

	if head.Call != nil {
		switch head.Call.Name {
		case "startSketchOn":
			sk, err := ev.sketch(head.Call, pipes)
			if err != nil {
				return fmt.Errorf("%s: %w", as.Name, err)
			}
			ev.sketches[as.Name] = sk
			return nil
		case "union", "subtract", "intersect":
			if len(pipes) > 0 {
				return fmt.Errorf("%s: cannot pipe a boolean result", as.Name)
			}
			s, err := ev.boolean(head.Call)
			if err != nil {
				return fmt.Errorf("%s: %w", as.Name, err)
			}
			ev.bind(as.Name, s)
			return nil
		}
		return fmt.Errorf("%s: cannot evaluate %s", as.Name, head.Call.Name)
	}

	if head.Ident != "" && len(pipes) == 1 {
		sk, ok := ev.sketches[head.Ident]
		if !ok {
			return fmt.Errorf("%s: %s is not a sketch", as.Name, head.Ident)
		}
		s, err := ev.sweep(sk, pipes[0])
		if err != nil {
			return fmt.Errorf("%s: %w", as.Name, err)
		}
		ev.bind(as.Name, s)
		return nil
	}
	return fmt.Errorf("%s: unsupported statement", as.Name)
}

// alias binds name to the current value of another variable.
func (ev *evaluator) alias(name, src string) error {
	if v, ok := ev.scalars[src]; ok {
		ev.scalars[name] = v
		return nil
	}
	if sk, ok := ev.sketches[src]; ok {
		ev.sketches[name] = sk
		return nil
	}
	if s, err := ev.solid(src); err == nil {
		ev.bind(name, s)
		return nil
	}
	return fmt.Errorf("%s: %s is not defined", name, src)
}

// number reads a numeric argument, resolving scalar variables.
func (ev *evaluator) number(v *check.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	if v == nil || v.Ident == "" {
		return 0, false
	}
	f, ok := ev.scalars[v.Ident]
	return f, ok
}

func (ev *evaluator) bind(name string, s kernel.Solid) {
	min, max := s.BoundingBox()
	b := Body{Var: name, Min: min, Max: max, Solid: s}
	if i, ok := ev.solids[name]; ok {
		ev.res.Bodies[i] = b
		return
	}
	ev.solids[name] = len(ev.res.Bodies)
	ev.res.Bodies = append(ev.res.Bodies, b)
}

func (ev *evaluator) solid(name string) (kernel.Solid, error) {
	i, ok := ev.solids[name]
	if !ok {
		return nil, fmt.Errorf("%s is not a solid", name)
	}
	return ev.res.Bodies[i].Solid, nil
}

// ---------------------------------------------------------------------------
// Sketches
// ---------------------------------------------------------------------------

// path traces the pen of a sketch chain.
type path struct {
	points  [][2]float64
	circles [][3]float64
}

func (p *path) at() ([2]float64, bool) {
	if len(p.points) == 0 {
		return [2]float64{}, false
	}
	return p.points[len(p.points)-1], true
}

func (ev *evaluator) sketch(on *check.Call, pipes []*check.Call) (sketchValue, error) {
	var sk sketchValue
	args := on.Positional()
	if len(args) != 1 || args[0].Ident == "" {
		return sk, fmt.Errorf("startSketchOn: expected a plane")
	}
	p, ok := plane.Parse(args[0].Ident)
	if !ok {
		return sk, fmt.Errorf("startSketchOn: unknown plane %s", args[0].Ident)
	}
	sk.plane = p

	var pt path
	for _, c := range pipes {
		if err := pt.apply(c); err != nil {
			return sk, err
		}
	}

	prof, err := ev.profile(pt)
	if err != nil {
		return sk, err
	}
	sk.profile = prof
	return sk, nil
}

func (p *path) apply(c *check.Call) error {
	switch c.Name {
	case "startProfile":
		x, y, ok := c.Arg("at").Point()
		if !ok {
			return fmt.Errorf("startProfile: missing at")
		}
		p.points = append(p.points[:0], [2]float64{x, y})
	case "line":
		x, y, ok := c.Arg("endAbsolute").Point()
		if !ok {
			return fmt.Errorf("line: missing endAbsolute")
		}
		if _, ok := p.at(); !ok {
			return fmt.Errorf("line: no profile started")
		}
		p.points = append(p.points, [2]float64{x, y})
	case "arc":
		return p.arc(c)
	case "circle":
		x, y, ok := c.Arg("center").Point()
		d, okd := c.Arg("diameter").Float()
		if !ok || !okd {
			return fmt.Errorf("circle: missing center or diameter")
		}
		p.circles = append(p.circles, [3]float64{x, y, d / 2})
	case "close":
	default:
		return fmt.Errorf("cannot evaluate %s in a sketch", c.Name)
	}
	return nil
}

// arc samples an arc that starts at the pen position.
func (p *path) arc(c *check.Call) error {
	a0, ok0 := c.Arg("angleStart").Float()
	a1, ok1 := c.Arg("angleEnd").Float()
	r, okr := c.Arg("radius").Float()
	if !ok0 || !ok1 || !okr {
		return fmt.Errorf("arc: missing angleStart, angleEnd or radius")
	}
	start, ok := p.at()
	if !ok {
		return fmt.Errorf("arc: no profile started")
	}
	rad0, rad1 := a0*math.Pi/180, a1*math.Pi/180
	cx, cy := start[0]-r*math.Cos(rad0), start[1]-r*math.Sin(rad0)

	steps := int(math.Ceil(math.Abs(a1-a0) / ArcStep))
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		t := rad0 + (rad1-rad0)*float64(i)/float64(steps)
		p.points = append(p.points, [2]float64{cx + r*math.Cos(t), cy + r*math.Sin(t)})
	}
	return nil
}

// profile builds the region of a traced sketch. Circles inside a closed
// path are holes; without a path they are solid discs.
func (ev *evaluator) profile(p path) (kernel.Profile, error) {
	var prof kernel.Profile
	if len(p.points) >= 3 {
		poly, err := ev.k.Polygon(dedupe(p.points))
		if err != nil {
			return nil, err
		}
		prof = poly
	}
	for _, c := range p.circles {
		disc, err := ev.k.Circle(c[0], c[1], c[2])
		if err != nil {
			return nil, err
		}
		switch {
		case prof == nil:
			prof = disc
		case len(p.points) >= 3:
			prof = ev.k.Cut(prof, disc)
		default:
			prof = ev.k.Merge(prof, disc)
		}
	}
	if prof == nil {
		return nil, fmt.Errorf("sketch has no closed region")
	}
	return prof, nil
}

// dedupe drops consecutive repeated points and a closing point equal to
// the first.
func dedupe(points [][2]float64) [][2]float64 {
	out := make([][2]float64, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && near(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && near(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func near(a, b [2]float64) bool {
	return math.Abs(a[0]-b[0]) < 1e-9 && math.Abs(a[1]-b[1]) < 1e-9
}

// ---------------------------------------------------------------------------
// Solids
// ---------------------------------------------------------------------------

func (ev *evaluator) sweep(sk sketchValue, c *check.Call) (kernel.Solid, error) {
	switch c.Name {
	case "extrude":
		l, ok := ev.number(c.Arg("length"))
		if !ok {
			return nil, fmt.Errorf("extrude: missing length")
		}
		return ev.k.Orient(ev.k.Extrude(sk.profile, l), sk.plane), nil
	case "revolve":
		a, ok := ev.number(c.Arg("angle"))
		if !ok {
			return nil, fmt.Errorf("revolve: missing angle")
		}
		if axis := c.Arg("axis"); axis != nil && axis.Ident != "Y" {
			return nil, fmt.Errorf("revolve: only axis Y is supported")
		}
		s, err := ev.k.Revolve(sk.profile, a)
		if err != nil {
			return nil, err
		}
		return ev.k.Orient(s, sk.plane), nil
	}
	return nil, fmt.Errorf("cannot evaluate %s on a sketch", c.Name)
}

func (ev *evaluator) boolean(c *check.Call) (kernel.Solid, error) {
	pos := c.Positional()
	if len(pos) == 0 || pos[0].Ident == "" {
		return nil, fmt.Errorf("%s: missing target", c.Name)
	}
	target, err := ev.solid(pos[0].Ident)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}

	var tools []string
	if c.Name == "subtract" {
		tools = c.Arg("tools").Names()
	} else if len(pos) > 1 {
		for _, v := range pos[1:] {
			tools = append(tools, v.Names()...)
		}
	}
	if len(tools) == 0 {
		return nil, fmt.Errorf("%s: missing tools", c.Name)
	}

	out := target
	for _, name := range tools {
		tool, err := ev.solid(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		switch c.Name {
		case "union":
			out = ev.k.Union(out, tool)
		case "subtract":
			out = ev.k.Difference(out, tool)
		case "intersect":
			out = ev.k.Intersection(out, tool)
		}
	}
	return out, nil
}

// Tessellate produces one mesh per body, named after its variable.
func (r *Result) Tessellate(k kernel.Kernel) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(r.Bodies))
	for _, b := range r.Bodies {
		m, err := k.ToMesh(b.Solid)
		if err != nil {
			return nil, fmt.Errorf("preview: ToMesh failed for %s: %w", b.Var, err)
		}
		m.Name = b.Var
		meshes = append(meshes, m)
	}
	return meshes, nil
}

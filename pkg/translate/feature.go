package translate

import (
	"math"
	"strings"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/plane"
	"github.com/chazu/kclexport/pkg/script"
	"github.com/chazu/kclexport/pkg/units"
	"gonum.org/v1/gonum/spatial/r3"
)

// Fallback extrude distances, in display units, for extents that carry no
// usable distance.
const (
	ThroughAllDistance = 100
	ToEntityDistance   = 50
	UnknownDistance    = 10
)

func (r *run) feature(c host.Component, f host.Feature) error {
	// Revolve is checked before Extrude: its method set is a superset.
	switch f := f.(type) {
	case host.Combine:
		return r.combine(f)
	case host.Revolve:
		return r.revolve(c, f)
	case host.Extrude:
		return r.extrude(c, f)
	}
	r.log.Debug().Str("feature", f.Name()).Msg("unsupported feature kind skipped")
	return nil
}

func (r *run) extrude(c host.Component, f host.Extrude) error {
	r.out.Commentf("Extrude: %s", f.Name())
	defer r.out.Blank()

	distance := r.extrudeDistance(f)
	sk, ok := r.profileSketch(f.Profiles, "extrude")
	if !ok {
		return nil
	}
	length := units.Distance(distance, sk.plane)
	if length != distance {
		r.note("%s plane: flipped extrude direction from %s to %s", sk.plane, script.Number(distance), script.Number(length))
	}

	v := r.names.Numbered("extrude", 0)
	r.out.Linef("%s = %s |> extrude(length = %s)", v, sk.v, script.Number(length))
	if s := r.lineage.RegisterExtrude(f, c, v); s != "" {
		r.note("Bodies of %s tracked via %s", v, s)
	} else {
		r.note("No bodies tracked for %s", v)
	}
	return nil
}

// extrudeDistance resolves the display distance of an extrude extent.
// It always produces a number.
func (r *run) extrudeDistance(f host.Extrude) float64 {
	ext, err := f.Extent()
	if err != nil {
		r.log.Debug().Err(err).Str("feature", f.Name()).Msg("extent unavailable")
		r.out.Comment("Unsupported extent type: unavailable")
		return UnknownDistance
	}
	switch e := ext.(type) {
	case host.DistanceExtent:
		return r.norm.Length(e.Distance)
	case host.ThroughAllExtent:
		r.out.Commentf("Note: Through-all extent converted to %d units", ThroughAllDistance)
		return ThroughAllDistance
	case host.ToEntityExtent:
		r.out.Commentf("Note: To-entity extent converted to %d units", ToEntityDistance)
		return ToEntityDistance
	case host.SymmetricExtent:
		r.out.Comment("Note: Symmetric extent - using total distance")
		return r.norm.Length(e.Distance)
	case host.TwoSidesExtent:
		r.out.Comment("Note: Two-sided extent - using first side distance only")
		return r.norm.Length(e.DistanceOne)
	case host.UnknownExtent:
		r.out.Commentf("Unsupported extent type: %s", e.Type)
	default:
		r.out.Commentf("Unsupported extent type: %T", ext)
	}
	return UnknownDistance
}

// profileSketch resolves the emitted sketch driving a feature from its
// first profile. On failure it writes a warning and reports false.
func (r *run) profileSketch(profiles func() ([]host.Profile, error), kind string) (sketchInfo, bool) {
	list, err := profiles()
	if err != nil || len(list) == 0 {
		r.log.Debug().Err(err).Str("kind", kind).Msg("no profile")
		r.out.Commentf("Warning: No profile found for %s", kind)
		return sketchInfo{}, false
	}
	parent, err := list[0].ParentSketch()
	if err != nil || parent == nil {
		r.log.Debug().Err(err).Str("kind", kind).Msg("profile has no parent sketch")
		r.out.Commentf("Warning: Profile has no parent sketch - skipping %s", kind)
		return sketchInfo{}, false
	}
	sk, ok := r.sketches[parent.Token()]
	if !ok {
		r.out.Commentf("Warning: Sketch %s was not exported - skipping %s", parent.Name(), kind)
		return sketchInfo{}, false
	}
	return sk, true
}

func (r *run) revolve(c host.Component, f host.Revolve) error {
	r.out.Commentf("Revolve: %s", f.Name())
	defer r.out.Blank()

	ext, err := f.Extent()
	if err != nil {
		r.log.Debug().Err(err).Str("feature", f.Name()).Msg("extent unavailable")
		r.out.Comment("Warning: Unsupported revolve extent type")
		return nil
	}
	var angle float64
	switch e := ext.(type) {
	case host.AngleExtent:
		angle = degrees(e.Angle)
	case host.FullSweepExtent:
		angle = 360
		r.out.Comment("Note: Full sweep converted to 360 degrees")
	default:
		r.out.Comment("Warning: Unsupported revolve extent type")
		return nil
	}

	sk, ok := r.profileSketch(f.Profiles, "revolve")
	if !ok {
		return nil
	}
	if axis, err := f.Axis(); err == nil && r3.Norm(axis) > 0 && math.Abs(r3.Unit(axis).Y) < plane.Threshold {
		r.out.Commentf("Note: revolve axis (%s, %s, %s) emitted as Y",
			script.Number(units.Round(axis.X)), script.Number(units.Round(axis.Y)), script.Number(units.Round(axis.Z)))
	}

	v := r.names.Numbered("revolve", 0)
	r.out.Linef("%s = %s |> revolve(axis = Y, angle = %s)", v, sk.v, script.Number(angle))
	if s := r.lineage.RegisterRevolve(f, c, v); s != "" {
		r.note("Bodies of %s tracked via %s", v, s)
	}
	return nil
}

// Boolean operator names of the output language.
const (
	opUnion     = "union"
	opSubtract  = "subtract"
	opIntersect = "intersect"
)

func (r *run) combine(f host.Combine) error {
	r.out.Commentf("Combine: %s", f.Name())
	defer r.out.Blank()

	op := r.operation(f)
	target, tools, ok := r.operands(f)
	if !ok {
		t, tool, found := r.lineage.Positional()
		if !found {
			r.log.Warn().Str("feature", f.Name()).Msg("combine operands unknown")
			r.out.Comment("Could not deduce combine operands - SKIPPING")
			return nil
		}
		r.log.Debug().Str("feature", f.Name()).Str("target", t).Str("tool", tool).Msg("positional combine fallback")
		r.out.Commentf("Positional fallback: %s %s %s", t, op, tool)
		target, tools = t, []string{tool}
	}

	toolExpr := tools[0]
	if len(tools) > 1 {
		toolExpr = "[" + strings.Join(tools, ", ") + "]"
	}
	v := r.names.Numbered("solid", 3)
	if op == opSubtract {
		r.out.Linef("%s = %s(%s, tools = %s)", v, op, target, toolExpr)
	} else {
		r.out.Linef("%s = %s(%s, %s)", v, op, target, toolExpr)
	}

	targetBody, err := f.TargetBody()
	if err != nil {
		targetBody = nil
	}
	r.lineage.RegisterCombine(f, targetBody, v, append([]string{target}, tools...)...)
	return nil
}

// operation maps the combine operation to an operator name. When the host
// cannot report it, the feature name is searched for a hint; union is the
// default.
func (r *run) operation(f host.Combine) string {
	op, err := f.Operation()
	if err == nil {
		switch op {
		case host.OpJoin:
			return opUnion
		case host.OpCut:
			return opSubtract
		case host.OpIntersect:
			return opIntersect
		}
	}
	r.log.Debug().Err(err).Stringer("op", op).Str("feature", f.Name()).Msg("inferring operation from name")
	name := strings.ToLower(f.Name())
	switch {
	case strings.Contains(name, "cut"), strings.Contains(name, "subtract"):
		return opSubtract
	case strings.Contains(name, "intersect"):
		return opIntersect
	}
	return opUnion
}

// operands resolves the target and tool variables through lineage. It
// reports false when any operand is unknown.
func (r *run) operands(f host.Combine) (string, []string, bool) {
	body, err := f.TargetBody()
	if err != nil {
		r.log.Debug().Err(err).Str("feature", f.Name()).Msg("target body unavailable")
		return "", nil, false
	}
	target, ok := r.lineage.Resolve(body)
	if !ok {
		return "", nil, false
	}
	bodies, err := f.ToolBodies()
	if err != nil || len(bodies) == 0 {
		r.log.Debug().Err(err).Str("feature", f.Name()).Msg("tool bodies unavailable")
		return "", nil, false
	}
	tools := make([]string, 0, len(bodies))
	for _, b := range bodies {
		v, ok := r.lineage.Resolve(b)
		if !ok {
			return "", nil, false
		}
		tools = append(tools, v)
	}
	return target, tools, true
}

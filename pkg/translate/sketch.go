package translate

import (
	"fmt"
	"math"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/plane"
	"github.com/chazu/kclexport/pkg/script"
	"github.com/chazu/kclexport/pkg/stitch"
	"github.com/chazu/kclexport/pkg/units"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DegenerateTolerance is the display distance under which a drawing step
// is considered zero-length and dropped.
const DegenerateTolerance = 0.001

// sketch emits one profile chain. Sketches without curves emit only a
// comment.
func (r *run) sketch(s host.Sketch) error {
	name := s.Name()
	r.out.Commentf("Sketch: %s", name)

	cls := r.classify(s)
	curves, err := s.Curves()
	if err != nil {
		return fmt.Errorf("reading curves: %w", err)
	}
	if len(curves) == 0 {
		r.out.Commentf("Skipping %s - no curves found", name)
		return nil
	}

	res := stitch.Stitch(curves, func(v r3.Vec) (float64, float64) {
		return r.norm.Point(v, cls.Plane)
	})
	v := r.names.Unique(script.SafeName(name))

	r.note("Plane: %s (from %s)", cls.Plane, cls.Source)
	r.note("Stitched %d curves starting at %s", len(res.Segments), script.Point(res.Start.X, res.Start.Y))
	if !res.Connected() {
		r.log.Warn().Str("sketch", name).Int("unchained", res.Unchained).Msg("profile is not fully connected")
		r.out.Commentf("Warning: profile is not fully connected (%d curves unchained)", res.Unchained)
	}

	r.out.Linef("%s = startSketchOn(%s)", v, cls.Plane)
	r.out.Block(func() {
		r.out.Linef("|> startProfile(at = %s, %%)", script.Point(res.Start.X, res.Start.Y))
		p := &pen{run: r, at: res.Start}
		r.out.Block(func() {
			for _, seg := range res.Segments {
				p.segment(seg, cls.Plane)
			}
		})
		if !res.HasCircle {
			r.out.Line("|> close(%)")
		}
	})
	r.out.Blank()
	// Only complete blocks can drive features.
	r.sketches[s.Token()] = sketchInfo{v: v, plane: cls.Plane}
	return nil
}

// classify resolves the canonical plane of s, defaulting to Primary when
// the reference plane cannot be read.
func (r *run) classify(s host.Sketch) plane.Classification {
	ref, err := s.ReferencePlane()
	if err != nil {
		r.log.Debug().Err(err).Str("sketch", s.Name()).Msg("reference plane unavailable")
		return plane.Classification{Plane: plane.Primary, Source: plane.FromDefault}
	}
	return plane.Classify(ref, r.log)
}

// pen tracks the current drawing position of a profile chain.
type pen struct {
	run *run
	at  r2.Vec
}

func (p *pen) segment(seg stitch.Segment, pl plane.Canonical) {
	switch c := seg.Curve.(type) {
	case host.Line:
		if dist(seg.Start, seg.End) < DegenerateTolerance {
			p.run.note("Skipping zero-length line: %s -> %s", fmtPoint(seg.Start), fmtPoint(seg.End))
			return
		}
		p.lineTo(seg.End)
	case host.Arc:
		p.arc(c, seg, pl)
	case host.Circle:
		p.circle(c, seg)
	case host.Spline:
		p.spline(c, seg, pl)
	}
}

// lineTo draws a straight line unless target is the current position.
func (p *pen) lineTo(target r2.Vec) {
	if samePoint(target, p.at) {
		p.run.note("Skipping duplicate endpoint: %s", fmtPoint(target))
		return
	}
	p.run.out.Linef("|> line(endAbsolute = %s, %%)", fmtPoint(target))
	p.at = target
}

// arc draws a circular arc. Angles are counter-clockwise with angleEnd
// above angleStart; arcs traversed in reverse swap their angles and run
// clockwise. On the Secondary plane the flipped y axis mirrors the arc, so
// the angles are negated and the sweep direction inverts.
func (p *pen) arc(a host.Arc, seg stitch.Segment, pl plane.Canonical) {
	start, end := degrees(a.StartAngle), degrees(a.EndAngle)
	if seg.Reversed {
		start, end = end, start
		if end > start {
			end -= 360
		}
	} else if end < start {
		end += 360
	}
	if pl == plane.Secondary {
		start, end = units.Round(-start), units.Round(-end)
	}
	radius := p.run.norm.Length(a.Radius)
	p.run.out.Linef("|> arc(angleStart = %s, angleEnd = %s, radius = %s, %%)",
		script.Number(start), script.Number(end), script.Number(radius))
	p.at = seg.End
}

func (p *pen) circle(c host.Circle, seg stitch.Segment) {
	diameter := units.Round(2 * p.run.norm.Length(c.Radius))
	p.run.out.Linef("|> circle(center = %s, diameter = %s, %%)", fmtPoint(seg.Start), script.Number(diameter))
	p.at = seg.Start
}

// spline approximates a fitted spline by lines through its fit points.
func (p *pen) spline(s host.Spline, seg stitch.Segment, pl plane.Canonical) {
	pts := make([]r2.Vec, 0, len(s.FitPoints))
	for _, fp := range s.FitPoints {
		x, y := p.run.norm.Point(fp, pl)
		pts = append(pts, r2.Vec{X: x, Y: y})
	}
	if seg.Reversed {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	for i := 1; i < len(pts); i++ {
		if dist(pts[i-1], pts[i]) < DegenerateTolerance {
			continue
		}
		p.lineTo(pts[i])
	}
}

func degrees(rad float64) float64 {
	return units.Round(rad * 180 / math.Pi)
}

func dist(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

func samePoint(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < DegenerateTolerance && math.Abs(a.Y-b.Y) < DegenerateTolerance
}

func fmtPoint(v r2.Vec) string {
	return script.Point(v.X, v.Y)
}

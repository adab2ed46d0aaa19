// Package stitch orders the unordered curves of a sketch into one
// continuous path.
package stitch

import (
	"math"

	"github.com/chazu/kclexport/pkg/host"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MatchTolerance is the per-axis distance under which two endpoints
	// are considered the same point.
	MatchTolerance = 1e-6

	// TieTolerance is the x distance under which two candidate start
	// points are ordered by y instead.
	TieTolerance = 0.001
)

// Projector maps a sketch-space point to display coordinates.
type Projector func(v r3.Vec) (x, y float64)

// Segment is one curve of a stitched path, oriented in traversal order.
type Segment struct {
	Curve host.Curve

	// Start and End are the logical endpoints in traversal order, in
	// display coordinates.
	Start r2.Vec
	End   r2.Vec

	// Reversed is set when the curve is traversed from its end point to
	// its start point.
	Reversed bool

	// Chained is false for circles and for curves appended after the
	// path could not be continued.
	Chained bool
}

// Result is the output of Stitch.
type Result struct {
	Segments []Segment

	// Start is the display point the path begins at.
	Start r2.Vec

	// HasCircle reports whether any circle was present.
	HasCircle bool

	// Unchained counts non-circle curves that could not be connected to
	// the path and were appended in input order.
	Unchained int
}

// Connected reports whether every non-circle curve joined the path.
func (r Result) Connected() bool { return r.Unchained == 0 }

type entry struct {
	curve      host.Curve
	start, end r2.Vec
	used       bool
}

// Stitch orders curves into a path. The path starts at the curve whose
// start point is leftmost, then lowest. From the current point it first
// looks for an unused curve starting there, then for one ending there
// (traversed in reverse). When neither exists the remaining curves are
// appended in input order. Circles never chain; they follow the path in
// input order. The input slice is not modified.
func Stitch(curves []host.Curve, project Projector) Result {
	var res Result
	if len(curves) == 0 {
		return res
	}

	var open, circles []*entry
	for _, c := range curves {
		e := &entry{curve: c, start: toDisplay(c.StartPoint(), project), end: toDisplay(c.EndPoint(), project)}
		if host.IsCircle(c) {
			circles = append(circles, e)
			continue
		}
		open = append(open, e)
	}
	res.HasCircle = len(circles) > 0

	if len(open) > 0 {
		first := leftmost(open)
		res.Start = first.start
		res.Segments = append(res.Segments, take(first, false))
		current := first.end

		for len(res.Segments) < len(open) {
			next, reversed := follow(open, current)
			if next == nil {
				break
			}
			seg := take(next, reversed)
			res.Segments = append(res.Segments, seg)
			current = seg.End
		}

		for _, e := range open {
			if e.used {
				continue
			}
			seg := take(e, false)
			seg.Chained = false
			res.Segments = append(res.Segments, seg)
			res.Unchained++
		}
	} else {
		res.Start = circles[0].start
	}

	for _, e := range circles {
		seg := take(e, false)
		seg.Chained = false
		res.Segments = append(res.Segments, seg)
	}
	return res
}

func toDisplay(v r3.Vec, project Projector) r2.Vec {
	x, y := project(v)
	return r2.Vec{X: x, Y: y}
}

// leftmost returns the entry with the smallest start point under (x, y)
// ordering, keeping the earliest entry on exact ties.
func leftmost(entries []*entry) *entry {
	best := entries[0]
	for _, e := range entries[1:] {
		if Less(e.start, best.start) {
			best = e
		}
	}
	return best
}

// Less orders display points by x, then by y when the x values are
// within TieTolerance of each other.
func Less(a, b r2.Vec) bool {
	if math.Abs(a.X-b.X) < TieTolerance {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// follow finds the unused entry continuing the path at p, preferring
// forward matches over reversed ones.
func follow(entries []*entry, p r2.Vec) (*entry, bool) {
	for _, e := range entries {
		if !e.used && Close(e.start, p) {
			return e, false
		}
	}
	for _, e := range entries {
		if !e.used && Close(e.end, p) {
			return e, true
		}
	}
	return nil, false
}

func take(e *entry, reversed bool) Segment {
	e.used = true
	seg := Segment{Curve: e.curve, Start: e.start, End: e.end, Reversed: reversed, Chained: true}
	if reversed {
		seg.Start, seg.End = e.end, e.start
	}
	return seg
}

// Close reports whether a and b match within MatchTolerance on both axes.
func Close(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < MatchTolerance && math.Abs(a.Y-b.Y) < MatchTolerance
}

package stitch

import (
	"testing"

	"github.com/chazu/kclexport/pkg/host"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func identity(v r3.Vec) (float64, float64) { return v.X, v.Y }

func line(x1, y1, x2, y2 float64) host.Line {
	return host.Line{Start: r3.Vec{X: x1, Y: y1}, End: r3.Vec{X: x2, Y: y2}}
}

func assertContinuous(t *testing.T, res Result) {
	t.Helper()
	for i := 1; i < len(res.Segments); i++ {
		prev, cur := res.Segments[i-1], res.Segments[i]
		if !cur.Chained {
			break
		}
		if !Close(prev.End, cur.Start) {
			t.Fatalf("segment %d starts at %v, previous ended at %v", i, cur.Start, prev.End)
		}
	}
}

func TestStitchSquareAnyOrder(t *testing.T) {
	edges := []host.Curve{
		line(0, 0, 1, 0),
		line(1, 0, 1, 1),
		line(1, 1, 0, 1),
		line(0, 1, 0, 0),
	}
	orders := [][]int{
		{0, 1, 2, 3},
		{2, 0, 3, 1},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
	}
	for _, order := range orders {
		curves := make([]host.Curve, len(order))
		for i, j := range order {
			curves[i] = edges[j]
		}
		res := Stitch(curves, identity)
		if len(res.Segments) != 4 {
			t.Fatalf("order %v: got %d segments", order, len(res.Segments))
		}
		if res.Start != (r2.Vec{}) {
			t.Errorf("order %v: start = %v, want origin", order, res.Start)
		}
		if !res.Connected() || res.HasCircle {
			t.Errorf("order %v: connected=%v circle=%v", order, res.Connected(), res.HasCircle)
		}
		assertContinuous(t, res)
		if last := res.Segments[3].End; !Close(last, res.Start) {
			t.Errorf("order %v: path ends at %v, not closed", order, last)
		}
	}
}

func TestStitchReversedEdges(t *testing.T) {
	// Two edges are drawn against the loop direction.
	curves := []host.Curve{
		line(0, 0, 2, 0),
		line(2, 2, 2, 0),
		line(2, 2, 0, 2),
		line(0, 0, 0, 2),
	}
	res := Stitch(curves, identity)
	assertContinuous(t, res)

	reversed := 0
	for _, s := range res.Segments {
		if s.Reversed {
			reversed++
		}
	}
	if reversed != 2 {
		t.Errorf("reversed segments = %d, want 2", reversed)
	}
	if got := res.Segments[1]; !got.Reversed || got.End != (r2.Vec{X: 2, Y: 2}) {
		t.Errorf("second segment = %+v, want reversed edge ending at (2,2)", got)
	}
}

func TestStitchPrefersForwardMatch(t *testing.T) {
	curves := []host.Curve{
		line(0, 0, 1, 0),
		line(2, 0, 1, 0), // ends at (1,0), listed first
		line(1, 0, 1, 1), // starts at (1,0)
	}
	res := Stitch(curves, identity)
	if res.Segments[1].Curve != curves[2] {
		t.Errorf("second segment = %v, want forward match", res.Segments[1].Curve)
	}
}

func TestStitchStartTieBreak(t *testing.T) {
	curves := []host.Curve{
		line(0.0005, 5, 3, 5),
		line(0, 2, 0.0005, 5),
		line(3, 5, 0, 2),
	}
	res := Stitch(curves, identity)
	if res.Start != (r2.Vec{X: 0, Y: 2}) {
		t.Errorf("start = %v, want lowest point within tie tolerance", res.Start)
	}
}

func TestStitchDisconnected(t *testing.T) {
	curves := []host.Curve{
		line(5, 5, 6, 5),
		line(0, 0, 1, 0),
		line(1, 0, 1, 1),
		line(8, 8, 9, 9),
	}
	res := Stitch(curves, identity)
	if res.Connected() {
		t.Fatal("expected a degraded result")
	}
	if res.Unchained != 2 {
		t.Errorf("Unchained = %d, want 2", res.Unchained)
	}
	if len(res.Segments) != 4 {
		t.Fatalf("got %d segments, want all curves emitted", len(res.Segments))
	}
	// Remainder keeps input order.
	if res.Segments[2].Curve != curves[0] || res.Segments[3].Curve != curves[3] {
		t.Errorf("remainder order = %v, %v", res.Segments[2].Curve, res.Segments[3].Curve)
	}
	if res.Segments[2].Chained {
		t.Error("remainder segment marked chained")
	}
}

func TestStitchCircles(t *testing.T) {
	c1 := host.Circle{Center: r3.Vec{X: 3, Y: 3}, Radius: 1}
	c2 := host.Circle{Center: r3.Vec{X: 1, Y: 1}, Radius: 1}

	t.Run("only circles", func(t *testing.T) {
		res := Stitch([]host.Curve{c1, c2}, identity)
		if !res.HasCircle || !res.Connected() {
			t.Fatalf("HasCircle=%v Connected=%v", res.HasCircle, res.Connected())
		}
		if res.Start != (r2.Vec{X: 3, Y: 3}) {
			t.Errorf("start = %v, want first circle center", res.Start)
		}
		if res.Segments[0].Curve != c1 || res.Segments[1].Curve != c2 {
			t.Error("circles reordered")
		}
	})

	t.Run("circles follow the path", func(t *testing.T) {
		curves := []host.Curve{c1, line(1, 1, 2, 1), line(2, 1, 1, 1)}
		res := Stitch(curves, identity)
		if res.Start != (r2.Vec{X: 1, Y: 1}) {
			t.Errorf("start = %v, circle center must not be a start candidate", res.Start)
		}
		if last := res.Segments[len(res.Segments)-1]; last.Curve != c1 || last.Chained {
			t.Errorf("last segment = %+v, want unchained circle", last)
		}
		if !res.Connected() {
			t.Error("circles must not count as unchained")
		}
	})
}

func TestStitchUsesProjection(t *testing.T) {
	flip := func(v r3.Vec) (float64, float64) { return v.X, -v.Y }
	curves := []host.Curve{line(0, 1, 0, 0), line(0, 0, 1, 0), line(1, 0, 0, 1)}
	res := Stitch(curves, flip)
	if res.Start != (r2.Vec{X: 0, Y: -1}) {
		t.Errorf("start = %v, want projected lowest point", res.Start)
	}
}

func TestStitchEmpty(t *testing.T) {
	res := Stitch(nil, identity)
	if len(res.Segments) != 0 || res.HasCircle {
		t.Errorf("Stitch(nil) = %+v", res)
	}
}

func TestStitchDoesNotMutateInput(t *testing.T) {
	curves := []host.Curve{line(1, 0, 0, 0), line(0, 0, 1, 0)}
	before := append([]host.Curve(nil), curves...)
	Stitch(curves, identity)
	for i := range curves {
		if curves[i] != before[i] {
			t.Fatal("input slice modified")
		}
	}
}

package host

import "gonum.org/v1/gonum/spatial/r3"

// Curve is a sketch curve primitive. Points are in sketch space, internal
// units; Z is ignored.
type Curve interface {
	// StartPoint and EndPoint are the points used for connectivity
	// matching. Both are the center for a circle.
	StartPoint() r3.Vec
	EndPoint() r3.Vec
	curve() // marker method restricting implementations to this package
}

// Line is a straight segment.
type Line struct {
	Start r3.Vec
	End   r3.Vec
}

func (l Line) StartPoint() r3.Vec { return l.Start }
func (l Line) EndPoint() r3.Vec   { return l.End }
func (Line) curve()               {}

// Arc is a circular arc. Angles are in radians, counter-clockwise from +X.
type Arc struct {
	Center     r3.Vec
	Start      r3.Vec
	End        r3.Vec
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

func (a Arc) StartPoint() r3.Vec { return a.Start }
func (a Arc) EndPoint() r3.Vec   { return a.End }
func (Arc) curve()               {}

// Circle is a full circle. It is closed on its own.
type Circle struct {
	Center r3.Vec
	Radius float64
}

func (c Circle) StartPoint() r3.Vec { return c.Center }
func (c Circle) EndPoint() r3.Vec   { return c.Center }
func (Circle) curve()               {}

// Spline is a fitted spline described by its fit points.
type Spline struct {
	FitPoints []r3.Vec
}

func (s Spline) StartPoint() r3.Vec {
	if len(s.FitPoints) == 0 {
		return r3.Vec{}
	}
	return s.FitPoints[0]
}

func (s Spline) EndPoint() r3.Vec {
	if len(s.FitPoints) == 0 {
		return r3.Vec{}
	}
	return s.FitPoints[len(s.FitPoints)-1]
}

func (Spline) curve() {}

// IsCircle reports whether c is a Circle.
func IsCircle(c Curve) bool {
	_, ok := c.(Circle)
	return ok
}

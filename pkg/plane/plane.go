// Package plane classifies arbitrary planar references into the three
// canonical planes of the output language.
package plane

import (
	"math"
	"strings"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Canonical identifies one of the three orthogonal coordinate planes.
type Canonical int

const (
	Primary   Canonical = iota // XY, normal along Z
	Secondary                  // XZ, normal along Y
	Tertiary                   // YZ, normal along X
)

// Threshold is the minimum magnitude a unit-normal component needs to
// claim its axis.
const Threshold = 0.9

func (c Canonical) String() string {
	switch c {
	case Secondary:
		return "XZ"
	case Tertiary:
		return "YZ"
	default:
		return "XY"
	}
}

// Source records how a classification was reached.
type Source int

const (
	FromNormal Source = iota
	FromDescription
	FromDefault
)

func (s Source) String() string {
	switch s {
	case FromNormal:
		return "normal"
	case FromDescription:
		return "description"
	default:
		return "default"
	}
}

// Classification is the result of Classify.
type Classification struct {
	Plane  Canonical
	Source Source
	Normal r3.Vec // unit normal when Source is FromNormal
}

// Classify maps ref onto a canonical plane. Planes whose normal is not
// axis-aligned within Threshold, and references that can be neither
// measured nor recognised by name, resolve to Primary.
func Classify(ref host.PlaneRef, log zerolog.Logger) Classification {
	if ref == nil {
		return Classification{Plane: Primary, Source: FromDefault}
	}
	if ref.Kind() != host.PlaneOther {
		n, err := ref.Normal()
		if err == nil && r3.Norm(n) > 0 {
			u := r3.Unit(n)
			c, ok := ByNormal(u)
			if !ok {
				log.Debug().Float64("x", u.X).Float64("y", u.Y).Float64("z", u.Z).
					Msg("oblique plane, defaulting to XY")
				return Classification{Plane: Primary, Source: FromDefault, Normal: u}
			}
			return Classification{Plane: c, Source: FromNormal, Normal: u}
		}
		log.Debug().Err(err).Stringer("kind", ref.Kind()).Msg("plane normal unavailable")
	}
	if c, ok := ByName(ref.Describe()); ok {
		return Classification{Plane: c, Source: FromDescription}
	}
	return Classification{Plane: Primary, Source: FromDefault}
}

// ByNormal classifies a unit normal. The sign of the normal is ignored.
func ByNormal(n r3.Vec) (Canonical, bool) {
	switch {
	case math.Abs(n.Z) > Threshold:
		return Primary, true
	case math.Abs(n.Y) > Threshold:
		return Secondary, true
	case math.Abs(n.X) > Threshold:
		return Tertiary, true
	}
	return Primary, false
}

// ByName recognises a plane from a textual description such as
// "Origin XZ plane".
func ByName(desc string) (Canonical, bool) {
	s := strings.ToUpper(desc)
	switch {
	case strings.Contains(s, "XY"):
		return Primary, true
	case strings.Contains(s, "XZ"):
		return Secondary, true
	case strings.Contains(s, "YZ"):
		return Tertiary, true
	}
	return Primary, false
}

// Parse maps an emitted plane name (XY, XZ, YZ) back to its Canonical.
func Parse(name string) (Canonical, bool) {
	for _, c := range []Canonical{Primary, Secondary, Tertiary} {
		if c.String() == name {
			return c, true
		}
	}
	return Primary, false
}

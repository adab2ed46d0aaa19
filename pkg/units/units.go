// Package units converts raw host lengths into the document's display units
// and applies the per-plane coordinate conventions of the output language.
package units

import (
	"math"
	"strings"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/plane"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Unit is a display length unit of the output script.
type Unit int

const (
	Millimeter Unit = iota
	Centimeter
	Meter
	Inch
	Foot
)

// Default is used when the host cannot report its display unit.
const Default = Millimeter

// Precision is the number of decimals kept by every conversion.
const Precision = 3

func (u Unit) String() string {
	switch u {
	case Millimeter:
		return "mm"
	case Centimeter:
		return "cm"
	case Meter:
		return "m"
	case Inch:
		return "in"
	case Foot:
		return "ft"
	default:
		return "mm"
	}
}

// PerCentimeter returns how many of u make up one centimetre.
func (u Unit) PerCentimeter() float64 {
	switch u {
	case Centimeter:
		return 1
	case Meter:
		return 0.01
	case Inch:
		return 1 / 2.54
	case Foot:
		return 1 / 30.48
	default:
		return 10
	}
}

// Parse maps a unit name ("mm", "millimeter", ...) to a Unit.
func Parse(name string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mm", "millimeter", "millimeters":
		return Millimeter, true
	case "cm", "centimeter", "centimeters":
		return Centimeter, true
	case "m", "meter", "meters":
		return Meter, true
	case "in", "inch", "inches":
		return Inch, true
	case "ft", "foot", "feet":
		return Foot, true
	}
	return Default, false
}

// IsLength reports whether name is one of the supported length unit names.
func IsLength(name string) bool {
	_, ok := Parse(name)
	return ok
}

// fromEnum maps the host enumeration to a Unit.
func fromEnum(u host.DistanceUnit) (Unit, bool) {
	switch u {
	case host.UnitMillimeter:
		return Millimeter, true
	case host.UnitCentimeter:
		return Centimeter, true
	case host.UnitMeter:
		return Meter, true
	case host.UnitInch:
		return Inch, true
	case host.UnitFoot:
		return Foot, true
	}
	return Default, false
}

// Enum returns the host enumeration value for u.
func (u Unit) Enum() host.DistanceUnit {
	switch u {
	case Centimeter:
		return host.UnitCentimeter
	case Meter:
		return host.UnitMeter
	case Inch:
		return host.UnitInch
	case Foot:
		return host.UnitFoot
	}
	return host.UnitMillimeter
}

// Detect determines the display unit of d. It tries the host's unit
// enumeration, then its unit name, then falls back to Default. It never fails.
func Detect(d host.Design, log zerolog.Logger) Unit {
	if d == nil {
		return Default
	}
	enum, err := d.DistanceDisplayUnits()
	if err == nil {
		if u, ok := fromEnum(enum); ok {
			log.Debug().Str("unit", u.String()).Msg("display unit from enumeration")
			return u
		}
		log.Debug().Stringer("enum", enum).Msg("unsupported unit enumeration, defaulting")
		return Default
	}
	log.Debug().Err(err).Msg("unit enumeration unavailable")

	name, err := d.DefaultLengthUnits()
	if err != nil {
		log.Debug().Err(err).Msg("unit name unavailable, defaulting")
		return Default
	}
	if u, ok := Parse(name); ok {
		log.Debug().Str("unit", u.String()).Msg("display unit from name")
		return u
	}
	log.Debug().Str("name", name).Msg("unsupported unit name, defaulting")
	return Default
}

// Round rounds v to Precision decimals and normalises negative zero.
func Round(v float64) float64 {
	p := math.Pow(10, Precision)
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

// Normalizer converts lengths and points of one translation run.
type Normalizer struct {
	design host.Design
	unit   Unit
	log    zerolog.Logger
}

// NewNormalizer detects the display unit of d and returns a normalizer for it.
func NewNormalizer(d host.Design, log zerolog.Logger) *Normalizer {
	return &Normalizer{design: d, unit: Detect(d, log), log: log}
}

// Unit returns the detected display unit.
func (n *Normalizer) Unit() Unit { return n.unit }

// Length converts an internal length to display units. The host performs
// the conversion when it can; otherwise the built-in factor is used.
func (n *Normalizer) Length(v float64) float64 {
	if n.design != nil {
		converted, err := n.design.ConvertLength(v, host.InternalUnit, n.unit.String())
		if err == nil {
			return Round(converted)
		}
		n.log.Debug().Err(err).Msg("host conversion failed, using built-in factor")
	}
	return Round(v * n.unit.PerCentimeter())
}

// Point converts a sketch point to display coordinates for a sketch lying
// on p. Points on the Secondary plane have their second coordinate negated.
func (n *Normalizer) Point(v r3.Vec, p plane.Canonical) (x, y float64) {
	x, y = n.Length(v.X), n.Length(v.Y)
	if p == plane.Secondary {
		y = Round(-y)
	}
	return x, y
}

// Distance applies the plane's extrude direction convention to a display
// distance.
func Distance(d float64, p plane.Canonical) float64 {
	if p == plane.Secondary {
		return Round(-d)
	}
	return d
}

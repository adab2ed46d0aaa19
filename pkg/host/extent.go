package host

// Extent describes how far a feature sweeps its profile.
type Extent interface {
	extent()
}

// DistanceExtent is a fixed distance in internal units.
type DistanceExtent struct {
	Distance float64
}

// ThroughAllExtent cuts or extends through the whole model.
type ThroughAllExtent struct{}

// ToEntityExtent ends at another model entity.
type ToEntityExtent struct{}

// SymmetricExtent extends equally to both sides; Distance is the total.
type SymmetricExtent struct {
	Distance float64
}

// TwoSidesExtent extends by independent distances on each side.
type TwoSidesExtent struct {
	DistanceOne float64
	DistanceTwo float64
}

// AngleExtent is a revolve angle in radians.
type AngleExtent struct {
	Angle float64
}

// FullSweepExtent is a complete revolution.
type FullSweepExtent struct{}

// UnknownExtent is an extent kind the host could not describe further.
type UnknownExtent struct {
	Type string
}

func (DistanceExtent) extent()   {}
func (ThroughAllExtent) extent() {}
func (ToEntityExtent) extent()   {}
func (SymmetricExtent) extent()  {}
func (TwoSidesExtent) extent()   {}
func (AngleExtent) extent()      {}
func (FullSweepExtent) extent()  {}
func (UnknownExtent) extent()    {}

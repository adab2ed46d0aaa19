package lineage

import "github.com/chazu/kclexport/pkg/host"

// Strategy is one step of the body association chain. Find returns the
// bodies it attributes to f, or nothing when it has no answer.
type Strategy struct {
	Name string
	Find func(f host.BodyProducer, comp host.Component) []host.Body
}

// DirectBodies uses the bodies the feature itself reports.
var DirectBodies = Strategy{
	Name: "direct",
	Find: func(f host.BodyProducer, _ host.Component) []host.Body {
		bodies, err := f.Bodies()
		if err != nil {
			return nil
		}
		return bodies
	},
}

// SoleComponentBody attributes the only body of the component to f.
var SoleComponentBody = Strategy{
	Name: "sole-body",
	Find: func(_ host.BodyProducer, comp host.Component) []host.Body {
		bodies := componentBodies(comp)
		if len(bodies) != 1 {
			return nil
		}
		return bodies
	},
}

// CreatorMatch picks the first component body whose creator is f.
var CreatorMatch = Strategy{
	Name: "creator",
	Find: func(f host.BodyProducer, comp host.Component) []host.Body {
		for _, b := range componentBodies(comp) {
			creator, err := b.CreatedBy()
			if err != nil || creator == nil {
				continue
			}
			if creator.Token() == f.Token() {
				return []host.Body{b}
			}
		}
		return nil
	},
}

// MostRecentBody attributes the last body of the component to f.
var MostRecentBody = Strategy{
	Name: "most-recent",
	Find: func(_ host.BodyProducer, comp host.Component) []host.Body {
		bodies := componentBodies(comp)
		if len(bodies) == 0 {
			return nil
		}
		return bodies[len(bodies)-1:]
	},
}

// DefaultStrategies returns the association chain in the order it is tried.
func DefaultStrategies() []Strategy {
	return []Strategy{DirectBodies, SoleComponentBody, CreatorMatch, MostRecentBody}
}

func componentBodies(comp host.Component) []host.Body {
	if comp == nil {
		return nil
	}
	bodies, err := comp.Bodies()
	if err != nil {
		return nil
	}
	return bodies
}

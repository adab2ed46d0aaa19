// Package lineage maps host features and bodies to the script variables
// that represent them.
package lineage

import (
	"github.com/chazu/kclexport/pkg/host"
	"github.com/rs/zerolog"
)

// Tracker records lineage for one translation run. It is not safe for
// concurrent use.
type Tracker struct {
	strategies []Strategy
	log        zerolog.Logger

	features map[string]string // feature token -> variable
	bodies   map[string]string // body token -> variable

	extrudes []string        // extrude variables in creation order
	results  []string        // combine results in creation order
	consumed map[string]bool // variables used as boolean operands
}

// New returns an empty tracker. With no strategies the default chain is
// used.
func New(log zerolog.Logger, strategies ...Strategy) *Tracker {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Tracker{
		strategies: strategies,
		log:        log,
		features:   make(map[string]string),
		bodies:     make(map[string]string),
		consumed:   make(map[string]bool),
	}
}

// RegisterExtrude records v as the result of extrude f and remembers it
// for positional combine fallback.
func (t *Tracker) RegisterExtrude(f host.BodyProducer, comp host.Component, v string) string {
	t.extrudes = append(t.extrudes, v)
	return t.register(f, comp, v)
}

// RegisterRevolve records v as the result of revolve f.
func (t *Tracker) RegisterRevolve(f host.BodyProducer, comp host.Component, v string) string {
	return t.register(f, comp, v)
}

// register maps the feature token and runs the strategy chain until one
// strategy attributes bodies. It returns the name of that strategy, or ""
// when no body could be associated.
func (t *Tracker) register(f host.BodyProducer, comp host.Component, v string) string {
	t.features[f.Token()] = v
	for _, s := range t.strategies {
		bodies := s.Find(f, comp)
		if len(bodies) == 0 {
			continue
		}
		for _, b := range bodies {
			t.bodies[b.Token()] = v
		}
		t.log.Debug().
			Str("feature", f.Name()).
			Str("var", v).
			Str("strategy", s.Name).
			Int("bodies", len(bodies)).
			Msg("bodies associated")
		return s.Name
	}
	t.log.Debug().Str("feature", f.Name()).Str("var", v).Msg("no bodies associated")
	return ""
}

// RegisterCombine records v as the result of combine c. The target body,
// when known, now stands for v. Operands are marked consumed.
func (t *Tracker) RegisterCombine(c host.Feature, target host.Body, v string, operands ...string) {
	t.features[c.Token()] = v
	if target != nil {
		t.bodies[target.Token()] = v
	}
	t.results = append(t.results, v)
	for _, o := range operands {
		t.consumed[o] = true
	}
}

// Resolve returns the variable representing body. A body without a direct
// mapping is resolved through its creating feature and the answer cached.
func (t *Tracker) Resolve(body host.Body) (string, bool) {
	if body == nil {
		return "", false
	}
	tok := body.Token()
	if v, ok := t.bodies[tok]; ok {
		return v, true
	}
	creator, err := body.CreatedBy()
	if err != nil || creator == nil {
		t.log.Debug().Err(err).Str("body", body.Name()).Msg("body has no creator")
		return "", false
	}
	v, ok := t.features[creator.Token()]
	if !ok {
		t.log.Debug().Str("body", body.Name()).Str("creator", creator.Name()).Msg("creator not translated")
		return "", false
	}
	t.bodies[tok] = v
	return v, true
}

// Feature returns the variable registered for a feature token.
func (t *Tracker) Feature(token string) (string, bool) {
	v, ok := t.features[token]
	return v, ok
}

// Extrudes returns the extrude variables in creation order.
func (t *Tracker) Extrudes() []string {
	return append([]string(nil), t.extrudes...)
}

// Positional guesses combine operands from creation order. Before any
// combine it pairs the first two extrudes. Afterwards it pairs the most
// recent combine result with the first extrude, other than the very first,
// not yet used by a boolean; if there is none it falls back to the first
// two extrudes.
func (t *Tracker) Positional() (target, tool string, ok bool) {
	if len(t.results) > 0 && len(t.extrudes) > 0 {
		recent := t.results[len(t.results)-1]
		for _, e := range t.extrudes[1:] {
			if !t.consumed[e] {
				return recent, e, true
			}
		}
	}
	if len(t.extrudes) >= 2 {
		return t.extrudes[0], t.extrudes[1], true
	}
	return "", "", false
}

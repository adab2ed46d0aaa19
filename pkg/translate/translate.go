// Package translate converts a host solid model into a pipe-style script.
//
// A translation walks every component twice: first its sketches, which
// become profile chains, then its feature sequence, which becomes extrude,
// revolve and boolean statements. Per-item faults are written into the
// script as comments and the walk continues; only a missing or invalid
// design is fatal.
package translate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/lineage"
	"github.com/chazu/kclexport/pkg/plane"
	"github.com/chazu/kclexport/pkg/script"
	"github.com/chazu/kclexport/pkg/units"
	"github.com/rs/zerolog"
)

// Fatal faults. No output is produced when one of these is returned.
var (
	ErrNoDesign      = errors.New("translate: no active design")
	ErrNotSolidModel = errors.New("translate: active product is not a solid model design")
	ErrNoIdentity    = errors.New("translate: design has no document identity")
)

// Options configures a Translator.
type Options struct {
	// Logger receives diagnostics. The zero value discards them.
	Logger zerolog.Logger

	// Verbose exports model parameters and writes diagnostic comments
	// (unit detection, plane classification, stitch order) into the script.
	Verbose bool
}

// Translator converts designs to scripts. A Translator holds no state
// between runs and may be reused.
type Translator struct {
	opts Options
}

// New returns a Translator with the given options.
func New(opts Options) *Translator {
	return &Translator{opts: opts}
}

// Translate converts d into a script. The host must not change while a
// translation is running.
func (t *Translator) Translate(d host.Design) (string, error) {
	if d == nil {
		return "", ErrNoDesign
	}
	if !d.IsSolidModel() {
		return "", ErrNotSolidModel
	}
	name, err := d.DocumentName()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}

	r := newRun(d, name, t.opts)
	r.header(name)
	r.parameters()
	r.components()
	return r.out.String(), nil
}

// sketchInfo is what features need to know about an emitted sketch.
type sketchInfo struct {
	v     string
	plane plane.Canonical
}

// run is the state of one translation.
type run struct {
	design  host.Design
	verbose bool
	log     zerolog.Logger

	out      *script.Emitter
	names    *script.NameAllocator
	lineage  *lineage.Tracker
	norm     *units.Normalizer
	sketches map[string]sketchInfo // sketch token -> emitted sketch
}

func newRun(d host.Design, name string, opts Options) *run {
	log := opts.Logger.With().Str("design", name).Logger()
	return &run{
		design:   d,
		verbose:  opts.Verbose,
		log:      log,
		out:      script.NewEmitter(),
		names:    script.NewNameAllocator(),
		lineage:  lineage.New(log),
		norm:     units.NewNormalizer(d, log),
		sketches: make(map[string]sketchInfo),
	}
}

// note writes a diagnostic comment in verbose mode.
func (r *run) note(format string, args ...any) {
	if r.verbose {
		r.out.Commentf(format, args...)
	}
}

// guard runs one item translation. An error or a panic raised by the host
// becomes a comment and the run continues.
func (r *run) guard(kind, name string, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn().Str("kind", kind).Str("name", name).Interface("panic", rec).Msg("item failed")
			r.out.Commentf("Error processing %s %s: %v", kind, name, rec)
		}
	}()
	if err := fn(); err != nil {
		r.log.Warn().Err(err).Str("kind", kind).Str("name", name).Msg("item failed")
		r.out.Commentf("Error processing %s %s: %v", kind, name, err)
	}
}

func (r *run) header(name string) {
	r.out.Comment("Generated by kclexport")
	r.out.Commentf("Design: %s", name)
	r.out.Blank()
	r.out.Comment("Set units")
	r.out.Linef("@settings(defaultLengthUnit = %s)", r.norm.Unit())
	r.note("Detected display unit: %s", r.norm.Unit())
	r.out.Blank()
}

func (r *run) parameters() {
	params, err := r.design.Parameters()
	if err != nil {
		r.log.Debug().Err(err).Msg("parameters unavailable")
		r.out.Blank()
		return
	}
	if len(params) == 0 {
		r.log.Debug().Msg("design has no parameters")
		return
	}

	var user, model []host.Parameter
	for _, p := range params {
		if p.User {
			user = append(user, p)
		} else {
			model = append(model, p)
		}
	}

	r.out.Comment("=== PARAMETERS ===")
	if len(user) > 0 {
		r.out.Comment("User Parameters:")
		for _, p := range user {
			r.guard("parameter", p.Name, func() error { r.parameter(p); return nil })
		}
		r.out.Blank()
	}
	if len(model) > 0 && r.verbose {
		r.out.Comment("Model Parameters (auto-generated):")
		for _, p := range model {
			r.guard("parameter", p.Name, func() error { r.parameter(p); return nil })
		}
		r.out.Blank()
	}
	if len(user) == 0 && !r.verbose {
		r.out.Comment("No user parameters defined")
		r.out.Blank()
	}
}

// parameter emits one "name = value" line. Length values are converted to
// display units.
func (r *run) parameter(p host.Parameter) {
	v := r.names.Unique(script.SafeName(p.Name))
	raw := script.Number(p.Value)
	value := raw
	if units.IsLength(p.Unit) {
		value = script.Number(r.norm.Length(p.Value))
	}
	line := v + " = " + value

	if p.Comment != "" || p.Name != v {
		var parts []string
		if p.Name != v {
			parts = append(parts, "Original: "+p.Name)
		}
		if p.Comment != "" {
			parts = append(parts, p.Comment)
		}
		if p.Unit != "" {
			parts = append(parts, "Units: "+p.Unit)
		}
		if p.Expression != "" && p.Expression != raw {
			parts = append(parts, "Expression: "+p.Expression)
		}
		line += "  // " + strings.Join(parts, " | ")
	}
	r.out.Line(line)
}

func (r *run) components() {
	comps, err := r.design.Components()
	if err != nil {
		r.log.Warn().Err(err).Msg("components unavailable")
		r.out.Commentf("Error reading components: %v", err)
		return
	}
	for _, c := range comps {
		r.component(c)
	}
}

func (r *run) component(c host.Component) {
	name := c.Name()
	sketches, serr := c.Sketches()
	features, ferr := c.Features()

	r.out.Commentf("Component: %s", name)
	r.out.Commentf("Found %d sketches and %d features", len(sketches), len(features))
	r.out.Blank()

	if serr != nil {
		r.log.Warn().Err(serr).Str("component", name).Msg("sketches unavailable")
		r.out.Commentf("Error reading sketches: %v", serr)
	}
	if len(sketches) > 0 {
		r.out.Comment("=== SKETCHES ===")
		for _, s := range sketches {
			r.guard("sketch", s.Name(), func() error { return r.sketch(s) })
		}
	}

	if ferr != nil {
		r.log.Warn().Err(ferr).Str("component", name).Msg("features unavailable")
		r.out.Commentf("Error reading features: %v", ferr)
	}
	if len(features) > 0 {
		r.out.Comment("=== FEATURES ===")
		for _, f := range features {
			r.guard("feature", f.Name(), func() error { return r.feature(c, f) })
		}
	}
}

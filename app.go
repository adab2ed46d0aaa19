package main

import (
	"errors"

	"github.com/alecthomas/participle/v2"
	"github.com/chazu/kclexport/pkg/check"
	"github.com/chazu/kclexport/pkg/engine"
	"github.com/chazu/kclexport/pkg/kernel"
	"github.com/chazu/kclexport/pkg/kernel/sdfx"
	"github.com/chazu/kclexport/pkg/preview"
	"github.com/chazu/kclexport/pkg/translate"
	"github.com/rs/zerolog"
)

// App ties the model engine, the translator and the preview kernel
// together. The CLI commands are thin wrappers around its methods.
type App struct {
	engine     *engine.Engine
	translator *translate.Translator
	kernel     kernel.Kernel
	log        zerolog.Logger
}

// Diagnostic is an error or warning with an optional source position.
type Diagnostic struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ExportResult is the outcome of exporting one model description.
type ExportResult struct {
	Script   string       `json:"script"`
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

// CheckResult is the outcome of checking one script.
type CheckResult struct {
	Variables []string     `json:"variables"`
	Errors    []Diagnostic `json:"errors"`
	Warnings  []Diagnostic `json:"warnings"`
}

// BodyData describes one previewed solid.
type BodyData struct {
	Var       string     `json:"var"`
	Min       [3]float64 `json:"min"`
	Max       [3]float64 `json:"max"`
	Triangles int        `json:"triangles,omitempty"`
}

// PreviewResult is the outcome of previewing one script.
type PreviewResult struct {
	Bodies   []BodyData   `json:"bodies"`
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

// NewApp creates an App with a fresh engine and the sdfx kernel.
func NewApp(log zerolog.Logger, verbose bool) *App {
	return &App{
		engine:     engine.NewEngine(),
		translator: translate.New(translate.Options{Logger: log, Verbose: verbose}),
		kernel:     sdfx.New(),
		log:        log,
	}
}

// Export evaluates a model description and translates the resulting
// design into a script.
func (a *App) Export(source string) ExportResult {
	result := ExportResult{
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}

	// Step 1: Evaluate the description into a design snapshot.
	res, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error().Err(err).Msg("evaluation failed")
		result.Errors = append(result.Errors, Diagnostic{Message: err.Error()})
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, Diagnostic{Message: w.String()})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, Diagnostic{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	// Step 2: Translate the design.
	out, err := a.translator.Translate(res.Design)
	if err != nil {
		a.log.Error().Err(err).Msg("translation failed")
		result.Errors = append(result.Errors, Diagnostic{Message: err.Error()})
		return result
	}
	result.Script = out
	return result
}

// Check parses and validates a script.
func (a *App) Check(src string) CheckResult {
	result := CheckResult{
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}
	s, err := check.Parse(src)
	if err != nil {
		result.Errors = append(result.Errors, parseDiagnostic(err))
		return result
	}
	res := check.Check(s)
	result.Variables = res.Variables
	result.Errors = appendDiagnostics(result.Errors, res.Errors)
	result.Warnings = appendDiagnostics(result.Warnings, res.Warnings)
	return result
}

// Preview evaluates a script with the kernel. With mesh set, every body is
// also tessellated and its triangle count reported.
func (a *App) Preview(src string, mesh bool) PreviewResult {
	result := PreviewResult{
		Bodies:   []BodyData{},
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}
	s, err := check.Parse(src)
	if err != nil {
		result.Errors = append(result.Errors, parseDiagnostic(err))
		return result
	}

	res := preview.Evaluate(s, a.kernel)
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, Diagnostic{Line: w.Line, Message: w.Message})
	}
	for _, b := range res.Bodies {
		result.Bodies = append(result.Bodies, BodyData{Var: b.Var, Min: b.Min, Max: b.Max})
	}
	if !mesh {
		return result
	}

	meshes, err := res.Tessellate(a.kernel)
	if err != nil {
		a.log.Error().Err(err).Msg("tessellation failed")
		result.Errors = append(result.Errors, Diagnostic{Message: "tessellation failed: " + err.Error()})
		return result
	}
	for i, m := range meshes {
		result.Bodies[i].Triangles = m.TriangleCount()
	}
	return result
}

func appendDiagnostics(dst []Diagnostic, src []check.Diagnostic) []Diagnostic {
	for _, d := range src {
		dst = append(dst, Diagnostic{Line: d.Line, Col: d.Col, Message: d.Message})
	}
	return dst
}

// parseDiagnostic extracts the position of a participle error when it
// carries one.
func parseDiagnostic(err error) Diagnostic {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return Diagnostic{Line: pos.Line, Col: pos.Column, Message: perr.Message()}
	}
	return Diagnostic{Message: err.Error()}
}

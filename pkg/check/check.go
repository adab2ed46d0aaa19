// Package check parses generated scripts and validates their references.
//
// The grammar covers the subset the translator writes: comments, the
// @settings directive, assignments, |> pipe chains, calls with labelled
// arguments, arrays, numbers and the % hole.
package check

import "fmt"

// Predeclared names: canonical planes, revolve axes and length units.
var predeclared = map[string]bool{
	"XY": true, "XZ": true, "YZ": true,
	"X": true, "Y": true, "Z": true,
	"mm": true, "cm": true, "m": true, "in": true, "ft": true,
}

// Functions lists the calls the script subset knows about.
var Functions = map[string]bool{
	"startSketchOn": true,
	"startProfile":  true,
	"line":          true,
	"arc":           true,
	"circle":        true,
	"close":         true,
	"extrude":       true,
	"revolve":       true,
	"union":         true,
	"subtract":      true,
	"intersect":     true,
}

// Diagnostic is a problem found at a source position.
type Diagnostic struct {
	Line    int
	Col     int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Col, d.Message)
}

// Result holds the outcome of checking one script.
type Result struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	// Variables lists the assigned variables in assignment order.
	Variables []string
}

// OK reports whether the script has no errors.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Check validates s: every referenced variable must be assigned earlier,
// calls should name known functions, and variables should not be
// reassigned.
func Check(s *Script) *Result {
	res := &Result{}
	defined := make(map[string]bool)

	for _, st := range s.Statements {
		switch {
		case st.Settings != nil:
			for _, a := range st.Settings.Args {
				res.value(a.Value, defined)
			}
		case st.Assign != nil:
			as := st.Assign
			res.value(as.Value.Head, defined)
			for _, c := range as.Value.Pipes {
				res.call(c, defined)
			}
			if defined[as.Name] {
				res.warn(as.Pos.Line, as.Pos.Column, "variable %s reassigned", as.Name)
			} else {
				res.Variables = append(res.Variables, as.Name)
			}
			defined[as.Name] = true
		}
	}
	return res
}

func (r *Result) value(v *Value, defined map[string]bool) {
	switch {
	case v == nil:
	case v.Call != nil:
		r.call(v.Call, defined)
	case v.Array != nil:
		for _, e := range v.Array.Elements {
			r.value(e, defined)
		}
	case v.Ident != "":
		if !defined[v.Ident] && !predeclared[v.Ident] {
			r.fail(v.Pos.Line, v.Pos.Column, "undefined variable %s", v.Ident)
		}
	}
}

func (r *Result) call(c *Call, defined map[string]bool) {
	if !Functions[c.Name] {
		r.warn(c.Pos.Line, c.Pos.Column, "unknown function %s", c.Name)
	}
	for _, a := range c.Args {
		r.value(a.Value, defined)
	}
}

func (r *Result) fail(line, col int, format string, args ...any) {
	r.Errors = append(r.Errors, Diagnostic{Line: line, Col: col, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) warn(line, col int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Diagnostic{Line: line, Col: col, Message: fmt.Sprintf(format, args...)})
}

// CheckString parses and checks input.
func CheckString(input string) (*Result, error) {
	s, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return Check(s), nil
}

package check

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Script is a parsed script.
type Script struct {
	Statements []*Statement `@@*`
}

// Statement is a settings directive or an assignment.
type Statement struct {
	Pos lexer.Position

	Settings *Settings   `  @@`
	Assign   *Assignment `| @@`
}

// Settings is the @settings(...) directive.
// Example: @settings(defaultLengthUnit = mm)
type Settings struct {
	Args []*Arg `At "settings" "(" ( @@ ( "," @@ )* )? ")"`
}

// Assignment binds the result of a pipe chain to a variable.
// Example: extrude1 = profile |> extrude(length = 10)
type Assignment struct {
	Pos lexer.Position

	Name  string `@Ident "="`
	Value *Chain `@@`
}

// Chain is a value followed by zero or more piped calls.
type Chain struct {
	Head  *Value  `@@`
	Pipes []*Call `( Pipe @@ )*`
}

// Call is a function call with positional and labelled arguments.
// Example: line(endAbsolute = [1, 0], %)
type Call struct {
	Pos lexer.Position

	Name string `@Ident "("`
	Args []*Arg `( @@ ( "," @@ )* )? ")"`
}

// Arg is a call argument, optionally labelled.
type Arg struct {
	Label string `( @Ident "=" )?`
	Value *Value `@@`
}

// Value is a literal, reference, call or array.
type Value struct {
	Pos lexer.Position

	Call   *Call    `  @@`
	Array  *Array   `| @@`
	Number *float64 `| @Number`
	Hole   bool     `| @Hole`
	Ident  string   `| @Ident`
}

// Array is a bracketed list of values.
type Array struct {
	Elements []*Value `"[" ( @@ ( "," @@ )* )? "]"`
}

// Arg returns the argument labelled label, or nil.
func (c *Call) Arg(label string) *Value {
	for _, a := range c.Args {
		if a.Label == label {
			return a.Value
		}
	}
	return nil
}

// Positional returns the unlabelled arguments, excluding the % hole.
func (c *Call) Positional() []*Value {
	var out []*Value
	for _, a := range c.Args {
		if a.Label == "" && !a.Value.Hole {
			out = append(out, a.Value)
		}
	}
	return out
}

// Float returns the numeric value of v.
func (v *Value) Float() (float64, bool) {
	if v == nil || v.Number == nil {
		return 0, false
	}
	return *v.Number, true
}

// Point returns the two coordinates of an [x, y] array.
func (v *Value) Point() (x, y float64, ok bool) {
	if v == nil || v.Array == nil || len(v.Array.Elements) != 2 {
		return 0, 0, false
	}
	x, okx := v.Array.Elements[0].Float()
	y, oky := v.Array.Elements[1].Float()
	return x, y, okx && oky
}

// Names returns the identifiers of a reference or an array of references.
func (v *Value) Names() []string {
	switch {
	case v == nil:
		return nil
	case v.Ident != "":
		return []string{v.Ident}
	case v.Array != nil:
		var out []string
		for _, e := range v.Array.Elements {
			out = append(out, e.Names()...)
		}
		return out
	}
	return nil
}

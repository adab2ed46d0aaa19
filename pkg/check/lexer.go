package check

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ScriptLexer tokenizes the pipe-style script subset written by the
// translator.
var ScriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	{Name: "Pipe", Pattern: `\|>`},
	{Name: "At", Pattern: `@`},
	{Name: "Hole", Pattern: `%`},

	{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Punct", Pattern: `[=(),\[\]]`},
})

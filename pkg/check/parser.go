package check

import (
	"fmt"
	"io"
	"sync"

	"github.com/alecthomas/participle/v2"
)

// Parser parses scripts.
type Parser struct {
	parser *participle.Parser[Script]
}

// NewParser creates a new script parser.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Script](
		participle.Lexer(ScriptLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses a script from a reader.
func (p *Parser) Parse(r io.Reader) (*Script, error) {
	s, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return s, nil
}

// ParseString parses a script from a string.
func (p *Parser) ParseString(input string) (*Script, error) {
	s, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return s, nil
}

var defaultParser = sync.OnceValues(NewParser)

// Parse parses input with a shared parser.
func Parse(input string) (*Script, error) {
	p, err := defaultParser()
	if err != nil {
		return nil, err
	}
	return p.ParseString(input)
}

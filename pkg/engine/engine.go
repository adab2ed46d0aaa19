// Package engine evaluates model descriptions written in a small Lisp
// dialect into host snapshots. It wraps zygomys in a sandboxed environment;
// every evaluation starts from a fresh interpreter.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/kclexport/pkg/snapshot"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal error in the model description, such as a parse
// error or a bad builtin argument.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning flags a description that evaluated but is probably not what
// the author meant, such as an unknown keyword argument.
type EvalWarning struct {
	Form    string
	Message string
}

func (w EvalWarning) String() string {
	return w.Form + ": " + w.Message
}

// EvalResult is the output of one evaluation. Design is nil when Errors is
// not empty.
type EvalResult struct {
	Design   *snapshot.Design
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine evaluates model descriptions. It is safe for concurrent use; a
// newer evaluation supersedes one still in flight.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source and returns the design it describes.
//
// Return semantics:
//   - On success: result with Design set, nil error
//   - On parse/eval failure: result with Errors set, nil error
//   - On fatal failure (timeout, panic, superseded): nil, error
func (e *Engine) Evaluate(source string) (*EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res := e.evaluate(source)
		ch <- evalResult{result: res}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) *EvalResult {
	b := newBuilder()

	if strings.TrimSpace(source) == "" {
		return &EvalResult{Design: b.design}
	}

	// Sandbox mode keeps descriptions away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return &EvalResult{Errors: parseZygomysError(err), Warnings: b.warnings}
	}
	if _, err := env.Run(); err != nil {
		return &EvalResult{Errors: parseZygomysError(err), Warnings: b.warnings}
	}
	return &EvalResult{Design: b.design, Warnings: b.warnings}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, extracting
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}

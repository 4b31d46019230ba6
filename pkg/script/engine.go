// Package script evaluates the prism DSL, a small Lisp (zygomys) for
// describing extruded footprints with holes, constraint segments, slabs
// and auxiliary geometry. Each evaluation runs in a fresh sandbox and
// yields a Design holding the prisms it defined.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/prismesh/pkg/structure"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal problem in user code: a parse error, a
// runtime error or a bad argument to a DSL form.
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

// NamedPrism is a prism defined with (prism "name" ...).
type NamedPrism struct {
	Name  string
	Prism *structure.Prism
}

// Design is the result of one evaluation. Prisms are in definition order.
type Design struct {
	Prisms []NamedPrism
}

// Lookup returns the prism called name, or nil.
func (d *Design) Lookup(name string) *structure.Prism {
	for _, np := range d.Prisms {
		if np.Name == name {
			return np.Prism
		}
	}
	return nil
}

// Names lists prism names in definition order.
func (d *Design) Names() []string {
	names := make([]string, len(d.Prisms))
	for i, np := range d.Prisms {
		names[i] = np.Name
	}
	return names
}

func (d *Design) add(name string, p *structure.Prism) error {
	if d.Lookup(name) != nil {
		return fmt.Errorf("duplicate prism name %q", name)
	}
	d.Prisms = append(d.Prisms, NamedPrism{Name: name, Prism: p})
	return nil
}

// Engine evaluates DSL source. It is safe for concurrent use; only the
// most recent evaluation's result is returned, older ones report that
// they were superseded.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source in a fresh sandbox.
//
// Return semantics:
//   - On success: design + nil errors + nil error
//   - On parse/eval failure: nil design + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): nil + nil + error
func (e *Engine) Evaluate(source string) (*Design, []EvalError, error) {
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

		d, evalErrs, err := evaluate(source)
		ch <- evalResult{design: d, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func evaluate(source string) (*Design, []EvalError, error) {
	d := &Design{}
	if strings.TrimSpace(source) == "" {
		return d, nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	var failure builtinFailure
	registerBuiltins(env, d, &failure)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		errs := parseZygomysError(err)
		// Report the form's own message rather than the interpreter's
		// wrapping of it.
		if failure.err != nil {
			errs[0].Message = failure.err.Error()
		}
		return nil, errs, nil
	}
	return d, nil, nil
}

// linePattern matches zygomys messages such as "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ...".
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, extracting
// the line number when the message carries one. It always returns at
// least one entry.
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

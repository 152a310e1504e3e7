// Package script provides a sandboxed Lisp console for programmatic batch
// edits against the authoritative scene engine. It wraps zygomys; scripts
// move, resize, and write node values directly on the engine, which makes
// them the canonical "external mutation" source: the overlay observes
// their effects through dirty detection, never through widget callbacks.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/vitrine/pkg/scene"
)

// RunTimeout is the hard limit for a single script run.
const RunTimeout = 5 * time.Second

// Error is a non-fatal script error (parse or runtime failure in user
// code), with a best-effort source line.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Result bundles the outcome of a script run for UI bindings.
type Result struct {
	Errors []Error `json:"errors"`
}

// OK reports whether the run completed without script errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Console evaluates scripts against one engine. Runs are serialized; a
// run that outlives RunTimeout is abandoned and its eventual result
// discarded via a generation check.
type Console struct {
	engine *scene.Engine

	mu         sync.Mutex
	generation uint64
}

// NewConsole creates a console bound to the engine.
func NewConsole(engine *scene.Engine) *Console {
	return &Console{engine: engine}
}

type runOutcome struct {
	result Result
	err    error
}

// Run evaluates source in a fresh sandbox.
//
// Return semantics:
//   - script errors (parse/runtime) come back inside Result, nil error
//   - fatal failures (timeout, panic) come back as a non-nil error
func (c *Console) Run(source string) (Result, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	ch := make(chan runOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- runOutcome{err: fmt.Errorf("panic during script run: %v", r)}
			}
		}()
		res, err := c.run(source)
		ch <- runOutcome{result: res, err: err}
	}()

	timer := time.NewTimer(RunTimeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		c.mu.Lock()
		current := c.generation
		c.mu.Unlock()
		if gen != current {
			return Result{}, fmt.Errorf("script run superseded by newer request")
		}
		return out.result, out.err
	case <-timer.C:
		return Result{}, fmt.Errorf("script run timed out after %s", RunTimeout)
	}
}

// run performs the actual evaluation in a sandboxed environment.
func (c *Console) run(source string) (Result, error) {
	if strings.TrimSpace(source) == "" {
		return Result{}, nil
	}

	// Sandbox mode keeps user scripts away from the filesystem and
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, c.engine)

	if err := env.LoadString(preprocess(source)); err != nil {
		return Result{Errors: toErrors(err)}, nil
	}
	if _, err := env.Run(); err != nil {
		return Result{Errors: toErrors(err)}, nil
	}
	return Result{}, nil
}

// lineRE extracts "on line N:" / "line N:" positions from zygomys error
// text, which has no structured location API.
var lineRE = regexp.MustCompile(`(?i)(?:error )?(?:on )?line (\d+):\s*(.*)`)

// toErrors converts a zygomys error into script errors with best-effort
// line information.
func toErrors(err error) []Error {
	msg := err.Error()
	if m := lineRE.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []Error{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []Error{{Message: strings.TrimSpace(msg)}}
}

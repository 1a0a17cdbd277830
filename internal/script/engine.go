// Package script runs user-supplied JavaScript test snippets against a
// response.
package script

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/hermeshq/hermes/internal/core"
)

// ConsoleHandler receives console output emitted by a script.
type ConsoleHandler func(level, message string)

// TestResult is the outcome of one test() block.
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

// Engine wraps the Goja JavaScript runtime for running response tests.
type Engine struct {
	mu             sync.Mutex
	consoleHandler ConsoleHandler
}

// NewEngine creates a script engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SetConsoleHandler sets the handler for console output.
func (e *Engine) SetConsoleHandler(handler ConsoleHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.consoleHandler = handler
}

// RunTests executes source with a `response` global and a `test(name, fn)`
// helper. A throwing test fails with the thrown message; other tests keep
// running. A syntax error or a throw outside any test aborts with an error.
func (e *Engine) RunTests(ctx context.Context, source string, resp *core.ResponseRecord) ([]TestResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	e.setupConsole(vm)
	vm.Set("response", resp)

	var results []TestResult
	vm.Set("test", func(name string, fn goja.Callable) {
		result := TestResult{Name: name, Passed: true}
		if _, err := fn(goja.Undefined()); err != nil {
			result.Passed = false
			result.Message = exceptionMessage(err)
		}
		results = append(results, result)
	})

	if ctx.Done() != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				vm.Interrupt("context cancelled")
			case <-done:
			}
		}()
	}

	program, err := goja.Compile("tests", source, true)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}

	if _, err := vm.RunProgram(program); err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			return nil, fmt.Errorf("execution interrupted: %v", interrupted.Value())
		}
		return results, fmt.Errorf("script error: %s", exceptionMessage(err))
	}

	return results, nil
}

func (e *Engine) setupConsole(vm *goja.Runtime) {
	console := vm.NewObject()

	emit := func(level string) func(call goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			if e.consoleHandler != nil {
				parts := make([]string, len(call.Arguments))
				for i, arg := range call.Arguments {
					parts[i] = fmt.Sprintf("%v", arg.Export())
				}
				e.consoleHandler(level, strings.Join(parts, " "))
			}
			return goja.Undefined()
		}
	}

	console.Set("log", emit("log"))
	console.Set("error", emit("error"))
	console.Set("warn", emit("warn"))
	console.Set("info", emit("info"))

	vm.Set("console", console)
}

func exceptionMessage(err error) string {
	if exc, ok := err.(*goja.Exception); ok {
		return exc.Value().String()
	}
	return err.Error()
}

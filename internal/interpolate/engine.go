package interpolate

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// variablePattern matches {{variable}} or {{ variable }} syntax.
var variablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_\-]*)\s*\}\}`)

// Engine handles variable interpolation. Substitution is single-pass: a
// substituted value is never re-scanned for further {{...}} patterns, and a
// placeholder whose variable is undefined is left verbatim, braces included.
type Engine struct {
	mu        sync.RWMutex
	variables map[string]string
}

// NewEngine creates a new interpolation engine.
func NewEngine() *Engine {
	return &Engine{
		variables: make(map[string]string),
	}
}

// SetVariable sets a variable value.
func (e *Engine) SetVariable(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.variables[name] = value
}

// SetVariables sets multiple variables at once.
func (e *Engine) SetVariables(vars map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range vars {
		e.variables[k] = v
	}
}

// HasVariable checks if a variable exists.
func (e *Engine) HasVariable(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.variables[name]
	return exists
}

// DeleteVariable removes a variable.
func (e *Engine) DeleteVariable(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.variables, name)
}

// Variables returns a copy of all variables.
func (e *Engine) Variables() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make(map[string]string, len(e.variables))
	for k, v := range e.variables {
		result[k] = v
	}
	return result
}

// Clear removes all variables.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.variables = make(map[string]string)
}

// Apply replaces every defined {{variable}} placeholder in the input string.
func (e *Engine) Apply(input string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := variablePattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		if value, ok := e.variables[submatch[1]]; ok {
			return value
		}
		return match
	})
}

// ApplyMap interpolates all values in a string map.
func (e *Engine) ApplyMap(input map[string]string) map[string]string {
	result := make(map[string]string, len(input))
	for k, v := range input {
		result[k] = e.Apply(v)
	}
	return result
}

// ExtractVariables returns all variable names found in the input string.
func (e *Engine) ExtractVariables(input string) []string {
	matches := variablePattern.FindAllStringSubmatch(input, -1)
	seen := make(map[string]bool)
	var result []string

	for _, match := range matches {
		if len(match) >= 2 && !seen[match[1]] {
			seen[match[1]] = true
			result = append(result, match[1])
		}
	}

	return result
}

// Validate checks if all variables in the input string are defined.
func (e *Engine) Validate(input string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var missing []string
	for _, name := range e.ExtractVariables(input) {
		if _, ok := e.variables[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("undefined variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

// Package codegen translates request configs into equivalent client code
// snippets. Generation is pure and total: every generator returns a string
// for any input, degrading to best-effort literal inclusion for malformed
// bodies.
package codegen

import (
	"sort"
	"strings"

	"github.com/hermeshq/hermes/internal/core"
)

// Target identifies a code generation target syntax.
type Target string

const (
	TargetCurl   Target = "curl"
	TargetFetch  Target = "fetch"
	TargetPython Target = "python"
)

// Generator produces a snippet for one target syntax.
type Generator interface {
	// Name returns a human-readable name for this generator.
	Name() string

	// Target returns the target this generator produces.
	Target() Target

	// Generate renders the request as a snippet. It never fails.
	Generate(cfg *core.RequestConfig) string
}

// Registry holds all registered generators.
type Registry struct {
	generators map[Target]Generator
}

// NewRegistry creates a registry with all built-in generators.
func NewRegistry() *Registry {
	r := &Registry{generators: make(map[Target]Generator)}
	r.Register(NewCurlGenerator())
	r.Register(NewFetchGenerator())
	r.Register(NewPythonGenerator())
	return r
}

// Register adds a generator to the registry.
func (r *Registry) Register(g Generator) {
	r.generators[g.Target()] = g
}

// Get returns a generator by target.
func (r *Registry) Get(target Target) (Generator, bool) {
	g, ok := r.generators[target]
	return g, ok
}

// ListTargets returns all registered targets, sorted.
func (r *Registry) ListTargets() []Target {
	targets := make([]Target, 0, len(r.generators))
	for t := range r.generators {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

// resolvedRequest is the shared preprocessing applied before any target is
// rendered: query params merged into the URL and auth resolved into plain
// headers, so every snippet is self-contained.
type resolvedRequest struct {
	Method   string
	URL      string
	Headers  map[string]string
	Keys     []string // sorted header names
	Encoding core.BodyEncoding
	Body     string
	Fields   []core.FormField // parsed pairs for form encodings
	SendBody bool

	// Basic credentials kept separate so curl can use -u instead of the
	// resolved Authorization header.
	BasicUser string
	BasicPass string
	HasBasic  bool
}

func resolve(cfg *core.RequestConfig) resolvedRequest {
	res := resolvedRequest{
		Method:   strings.ToUpper(cfg.Method),
		URL:      cfg.FullURL(),
		Headers:  make(map[string]string, len(cfg.Headers)+1),
		Encoding: cfg.BodyEncoding,
		Body:     cfg.Body,
		SendBody: cfg.AllowsBody() && cfg.Body != "",
	}

	for k, v := range cfg.Headers {
		res.Headers[k] = v
	}

	if cfg.Auth.IsConfigured() {
		cfg.Auth.ApplyToHeaders(res.Headers)
		if cfg.Auth.GetAuthType() == core.AuthTypeBasic {
			res.BasicUser = cfg.Auth.Username
			res.BasicPass = cfg.Auth.Password
			res.HasBasic = true
		}
	}

	for k := range res.Headers {
		res.Keys = append(res.Keys, k)
	}
	sort.Strings(res.Keys) // Deterministic order

	if res.SendBody && res.Encoding != core.EncodingRaw {
		res.Fields = core.ParseFormFields(res.Body)
	}

	return res
}

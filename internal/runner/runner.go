// Package runner executes every request in a collection sequentially and
// aggregates the outcomes into a summary.
package runner

import (
	"context"
	"time"

	"github.com/hermeshq/hermes/internal/core"
	"github.com/hermeshq/hermes/internal/script"
)

// Sender executes a single request. *app.App satisfies this.
type Sender interface {
	Send(ctx context.Context, cfg *core.RequestConfig) *core.ResponseRecord
}

// Result is the outcome of one request in a run.
type Result struct {
	RequestID   string
	RequestName string
	Method      string
	URL         string
	Response    *core.ResponseRecord
	Tests       []script.TestResult
	ScriptErr   error
}

// Passed reports whether the request reached the server and all of its test
// assertions held.
func (r *Result) Passed() bool {
	if r.Response == nil || r.Response.IsTransportFailure() || r.ScriptErr != nil {
		return false
	}
	for _, tr := range r.Tests {
		if !tr.Passed {
			return false
		}
	}
	return true
}

// Summary aggregates a whole collection run.
type Summary struct {
	CollectionName string
	Total          int
	Executed       int
	Passed         int
	Failed         int
	TestsPassed    int
	TestsFailed    int
	Elapsed        time.Duration
	Results        []Result
}

// AllPassed reports whether every executed request passed.
func (s *Summary) AllPassed() bool {
	return s.Failed == 0
}

// Progress is called after each request completes.
type Progress func(current, total int, result *Result)

// Runner runs collections through a Sender.
type Runner struct {
	sender     Sender
	engine     *script.Engine
	testScript string
	onProgress Progress
}

// Option configures a Runner.
type Option func(*Runner)

// WithTestScript sets a JavaScript test snippet evaluated against every
// response in the run.
func WithTestScript(source string) Option {
	return func(r *Runner) {
		r.testScript = source
	}
}

// WithProgress sets a callback invoked after each request.
func WithProgress(cb Progress) Option {
	return func(r *Runner) {
		r.onProgress = cb
	}
}

// New creates a runner.
func New(sender Sender, opts ...Option) *Runner {
	r := &Runner{
		sender: sender,
		engine: script.NewEngine(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the collection's requests in order. It stops early only when
// the context is cancelled; a failing request does not halt the run.
func (r *Runner) Run(ctx context.Context, coll core.CollectionRecord, requests []core.RequestItemRecord) *Summary {
	start := time.Now()
	summary := &Summary{
		CollectionName: coll.Name,
		Total:          len(requests),
		Results:        make([]Result, 0, len(requests)),
	}

	for i := range requests {
		if ctx.Err() != nil {
			break
		}

		result := r.execute(ctx, &requests[i])
		summary.Results = append(summary.Results, result)
		summary.Executed++

		if result.Passed() {
			summary.Passed++
		} else {
			summary.Failed++
		}
		for _, tr := range result.Tests {
			if tr.Passed {
				summary.TestsPassed++
			} else {
				summary.TestsFailed++
			}
		}

		if r.onProgress != nil {
			r.onProgress(i+1, len(requests), &result)
		}
	}

	summary.Elapsed = time.Since(start)
	return summary
}

func (r *Runner) execute(ctx context.Context, rec *core.RequestItemRecord) Result {
	cfg := rec.RequestConfig.Clone()
	result := Result{
		RequestID:   rec.ID,
		RequestName: rec.Name,
		Method:      cfg.Method,
		URL:         cfg.FullURL(),
	}

	result.Response = r.sender.Send(ctx, cfg)

	if r.testScript != "" && !result.Response.IsTransportFailure() {
		result.Tests, result.ScriptErr = r.engine.RunTests(ctx, r.testScript, result.Response)
	}
	return result
}

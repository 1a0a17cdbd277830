// Package app wires the store, interpolator and executor into the request
// pipeline the UI and CLI drive.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/hermeshq/hermes/internal/core"
	"github.com/hermeshq/hermes/internal/executor"
	"github.com/hermeshq/hermes/internal/interpolate"
	"github.com/hermeshq/hermes/internal/logging"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	ActiveEnvironment(ctx context.Context) (*core.EnvironmentRecord, error)
	AddHistory(ctx context.Context, entry core.HistoryEntry) (string, error)
}

// App executes requests: it resolves the active environment's variables into
// the config, runs the request, and records the outcome in history.
type App struct {
	store  Store
	exec   *executor.Executor
	logger *zap.Logger
}

// Option configures the App.
type Option func(*App)

// WithStore sets the persistence backend.
func WithStore(store Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithExecutor overrides the default executor.
func WithExecutor(exec *executor.Executor) Option {
	return func(a *App) {
		a.exec = exec
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New creates an App with the given options.
func New(opts ...Option) *App {
	a := &App{
		exec:   executor.New(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Send resolves variables from the active environment, executes the request,
// and appends the outcome to history. A failing store never fails the send;
// the response record is always returned.
func (a *App) Send(ctx context.Context, cfg *core.RequestConfig) *core.ResponseRecord {
	resolved := cfg
	envName := ""

	if a.store != nil {
		env, err := a.store.ActiveEnvironment(ctx)
		if err != nil {
			a.logger.Warn("failed to load active environment", zap.Error(err))
		} else if env != nil {
			resolved = Resolve(cfg, env.Variables)
			envName = env.Name
		}
	}

	resp := a.exec.Execute(ctx, resolved)

	a.logger.Info("request executed",
		logging.Method(resolved.Method),
		logging.URL(resolved.FullURL()),
		logging.Status(resp.StatusCode),
		logging.Elapsed(resp.ElapsedMillis),
	)

	if a.store != nil {
		entry := core.NewHistoryEntry(resolved, resp)
		entry.Environment = envName
		if _, err := a.store.AddHistory(ctx, entry); err != nil {
			a.logger.Warn("failed to record history", zap.Error(err))
		}
	}

	return resp
}

// Resolve substitutes variables into a copy of the config: the URL, the body
// and each header value, plus any auth credentials. The input is not mutated.
func Resolve(cfg *core.RequestConfig, variables map[string]string) *core.RequestConfig {
	engine := interpolate.NewEngine()
	engine.SetVariables(variables)

	resolved := cfg.Clone()
	resolved.URL = engine.Apply(resolved.URL)
	resolved.Body = engine.Apply(resolved.Body)
	resolved.Headers = engine.ApplyMap(resolved.Headers)
	resolved.QueryParams = engine.ApplyMap(resolved.QueryParams)

	if resolved.Auth != nil {
		resolved.Auth.Token = engine.Apply(resolved.Auth.Token)
		resolved.Auth.Username = engine.Apply(resolved.Auth.Username)
		resolved.Auth.Password = engine.Apply(resolved.Auth.Password)
		resolved.Auth.HeaderValue = engine.Apply(resolved.Auth.HeaderValue)
	}

	return resolved
}

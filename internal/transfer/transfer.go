// Package transfer serializes the full persisted data set to a portable JSON
// document and restores it atomically.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hermeshq/hermes/internal/core"
)

// FormatVersion tags exported documents so future readers can detect
// incompatible files.
const FormatVersion = "1.0.0"

// Common errors
var (
	ErrInvalidFormat  = errors.New("invalid format")
	ErrMissingSection = errors.New("missing required section")
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	ListCollections(ctx context.Context) ([]core.CollectionRecord, error)
	ListRequests(ctx context.Context) ([]core.RequestItemRecord, error)
	ListEnvironments(ctx context.Context) ([]core.EnvironmentRecord, error)

	// ReplaceAll atomically clears and re-inserts all three record kinds.
	ReplaceAll(ctx context.Context, colls []core.CollectionRecord, reqs []core.RequestItemRecord, envs []core.EnvironmentRecord) error
}

// DataFile is the on-disk shape of a full export.
type DataFile struct {
	Version      string                   `json:"version"`
	ExportedAt   string                   `json:"exportedAt"`
	Collections  []core.CollectionRecord  `json:"collections"`
	Requests     []core.RequestItemRecord `json:"requests"`
	Environments []core.EnvironmentRecord `json:"environments"`
}

// Service implements full-dataset export and import against a store.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a transfer service backed by the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportAll serializes every collection, request and environment into one
// JSON document with a version tag and export timestamp.
func (s *Service) ExportAll(ctx context.Context) ([]byte, error) {
	colls, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	reqs, err := s.store.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	envs, err := s.store.ListEnvironments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list environments: %w", err)
	}

	file := DataFile{
		Version:      FormatVersion,
		ExportedAt:   s.now().UTC().Format(time.RFC3339),
		Collections:  emptyIfNil(colls),
		Requests:     emptyIfNil(reqs),
		Environments: emptyIfNil(envs),
	}

	return json.MarshalIndent(file, "", "  ")
}

// ImportAll replaces the entire persisted data set with the document's
// contents. A document missing any of the three top-level arrays is rejected
// before the store is touched, so a bad import never partially applies.
func (s *Service) ImportAll(ctx context.Context, data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	for _, section := range []string{"collections", "requests", "environments"} {
		raw, ok := probe[section]
		if !ok || string(raw) == "null" {
			return fmt.Errorf("%w: %s", ErrMissingSection, section)
		}
	}

	var file DataFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	return s.store.ReplaceAll(ctx, file.Collections, file.Requests, file.Environments)
}

func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

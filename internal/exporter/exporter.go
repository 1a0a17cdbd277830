package exporter

import (
	"context"
	"errors"

	"github.com/hermeshq/hermes/internal/core"
)

// Common errors
var (
	ErrInvalidCollection = errors.New("invalid collection")
	ErrExportFailed      = errors.New("export failed")
)

// Format represents a supported export format.
type Format string

const (
	FormatPostman Format = "postman"
)

// Exporter defines the interface for exporting collections to external formats.
type Exporter interface {
	// Name returns the name of this exporter.
	Name() string

	// Format returns the format this exporter produces.
	Format() Format

	// FileExtension returns the file extension for exported files.
	FileExtension() string

	// Export converts one collection and its requests to the target format.
	Export(ctx context.Context, coll core.CollectionRecord, requests []core.RequestItemRecord) ([]byte, error)
}

// ExportResult contains the result of an export operation.
type ExportResult struct {
	Content       []byte
	Format        Format
	FileExtension string
}

// Registry holds all registered exporters.
type Registry struct {
	exporters map[Format]Exporter
}

// NewRegistry creates a registry with the built-in exporters registered.
func NewRegistry() *Registry {
	r := &Registry{
		exporters: make(map[Format]Exporter),
	}
	r.Register(NewPostmanExporter())
	return r
}

// Register adds an exporter to the registry.
func (r *Registry) Register(exp Exporter) {
	r.exporters[exp.Format()] = exp
}

// Get returns an exporter by format.
func (r *Registry) Get(format Format) (Exporter, bool) {
	exp, ok := r.exporters[format]
	return exp, ok
}

// Export exports the collection using the specified format.
func (r *Registry) Export(ctx context.Context, format Format, coll core.CollectionRecord, requests []core.RequestItemRecord) (*ExportResult, error) {
	exp, ok := r.exporters[format]
	if !ok {
		return nil, ErrExportFailed
	}

	content, err := exp.Export(ctx, coll, requests)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		Content:       content,
		Format:        format,
		FileExtension: exp.FileExtension(),
	}, nil
}

// ListFormats returns all registered formats.
func (r *Registry) ListFormats() []Format {
	formats := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		formats = append(formats, f)
	}
	return formats
}

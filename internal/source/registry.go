package source

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sharkymark/nuon-mcp/internal/errors"
)

// Registry is the sole owner of all Source instances, keyed by label.
// Populated once at startup; read-only afterward.
type Registry struct {
	sources map[string]Source
	order   []string
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		sources: make(map[string]Source),
		logger:  logger,
	}
}

// Add registers a source. Labels are unique and immutable.
func (r *Registry) Add(s Source) error {
	label := s.Label()
	if _, exists := r.sources[label]; exists {
		return fmt.Errorf("duplicate source label: %s", label)
	}
	r.sources[label] = s
	r.order = append(r.order, label)
	return nil
}

// Get resolves a label to its source.
func (r *Registry) Get(label string) (Source, error) {
	s, ok := r.sources[label]
	if !ok {
		return nil, errors.Newf(errors.NotFound, "repository not found: %s", label)
	}
	return s, nil
}

// Labels returns the registered labels in registration order.
func (r *Registry) Labels() []string {
	return append([]string{}, r.order...)
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	return len(r.sources)
}

// Metadata returns metadata for all sources in registration order.
func (r *Registry) Metadata() []Metadata {
	out := make([]Metadata, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, r.sources[label].Metadata())
	}
	return out
}

// SearchOutcome is one source's share of a fan-out search: either its
// formatted result text or its isolated error, never both.
type SearchOutcome struct {
	Label string
	Text  string
	Err   error
}

// SearchAll fans one query out across every source concurrently and joins
// the per-source outcomes in registration order. One source failing does not
// cancel or corrupt the others; its outcome carries the error instead.
func (r *Registry) SearchAll(ctx context.Context, query string, caseSensitive bool) []SearchOutcome {
	outcomes := make([]SearchOutcome, len(r.order))

	g, gctx := errgroup.WithContext(ctx)
	for i, label := range r.order {
		i, label := i, label
		src := r.sources[label]
		g.Go(func() error {
			text, err := src.Search(gctx, query, caseSensitive)
			outcomes[i] = SearchOutcome{Label: label, Text: text, Err: err}
			if err != nil {
				r.logger.Warn("Search failed for source",
					"label", label,
					"error", err.Error(),
				)
			}
			// Errors are isolated per outcome; never fail the group, which
			// would cancel sibling searches through gctx.
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// Close releases backend-private resources (remote session pools).
// Idempotent.
func (r *Registry) Close() {
	for _, label := range r.order {
		if closer, ok := r.sources[label].(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

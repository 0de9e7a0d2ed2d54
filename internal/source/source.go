// Package source implements the backend adapters behind the server's uniform
// query surface. A Source is a capability-bearing adapter over one repository
// of data — a local directory tree or a remote CRM — exposed through the same
// five operations regardless of what sits underneath.
package source

import "context"

// Kind tags the concrete variant of a source.
type Kind string

const (
	// KindFilesystem is a local directory tree searched with ripgrep.
	KindFilesystem Kind = "filesystem"
	// KindSalesforce is a remote Salesforce org queried over its REST API.
	KindSalesforce Kind = "salesforce"
)

// Metadata describes a source to callers of list_sources.
type Metadata struct {
	Label       string   `json:"label"`
	Kind        Kind     `json:"type"`
	Description string   `json:"description"`
	Path        string   `json:"path,omitempty"`
	FileCount   int      `json:"file_count"`
	Objects     []string `json:"objects,omitempty"`
}

// Source is the capability contract every backend variant implements. Each
// call is independent; no cursor or session is carried across calls except
// backend-private authentication state.
type Source interface {
	// Label returns the unique registry key for this source.
	Label() string

	// Search runs a full-text query and returns formatted match lines,
	// empty when nothing matched.
	Search(ctx context.Context, query string, caseSensitive bool) (string, error)

	// ReadFile reads one file or record addressed by a source-relative path
	// and returns it as a labeled fenced text block.
	ReadFile(ctx context.Context, path string) (string, error)

	// ListFiles lists files or record identifiers matching pattern, as
	// relative path strings in deterministic order.
	ListFiles(ctx context.Context, pattern string) ([]string, error)

	// Metadata returns the source's descriptive metadata.
	Metadata() Metadata

	// Tree renders the source's hierarchy starting at subpath, bounded by
	// maxDepth levels.
	Tree(ctx context.Context, subpath string, maxDepth int) (string, error)
}

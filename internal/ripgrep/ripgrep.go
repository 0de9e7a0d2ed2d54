// Package ripgrep runs full-text searches by delegating to the external rg
// binary and parsing its JSON event stream.
package ripgrep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// MaxResults caps the number of match lines returned by a single search.
// More matches than this are summarized by a trailing omission marker.
const MaxResults = 50

// MissingToolMessage is returned as the search result text when rg is not
// installed. The search contract is total: a missing tool is a result, not a
// failure.
const MissingToolMessage = "Error: ripgrep (rg) not found. Please install ripgrep."

// Engine invokes rg over a directory root.
type Engine struct {
	binary string
	logger *slog.Logger
}

// New creates a search engine using the rg binary on PATH.
func New(logger *slog.Logger) *Engine {
	return &Engine{binary: "rg", logger: logger}
}

// matchEvent mirrors the subset of rg's --json output the engine consumes.
// One JSON object per line; only type=="match" records carry match data.
type matchEvent struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		LineNumber int `json:"line_number"`
		Lines      struct {
			Text string `json:"text"`
		} `json:"lines"`
	} `json:"data"`
}

// Search runs query as a regular expression over root and returns the
// formatted match lines, one per match, as `<path>:<line>: <text>`. The query
// is case-insensitive unless caseSensitive is set. Returns empty text when
// nothing matched.
func (e *Engine) Search(ctx context.Context, root, query string, caseSensitive bool) (string, error) {
	args := []string{"--json"}
	if !caseSensitive {
		args = append(args, "-i")
	}
	args = append(args, query, root)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			// Exit code 1 is rg's "ran fine, found nothing". Anything else
			// (bad pattern, unreadable root) is swallowed into an empty
			// result; stdout may still hold partial matches worth keeping.
			if exitErr.ExitCode() != 1 && e.logger != nil {
				e.logger.Warn("rg exited abnormally",
					"root", root,
					"exitCode", exitErr.ExitCode(),
					"stderr", strings.TrimSpace(string(exitErr.Stderr)),
				)
			}
		case errors.Is(err, exec.ErrNotFound):
			return MissingToolMessage, nil
		default:
			if e.logger != nil {
				e.logger.Warn("rg failed to start", "error", err.Error())
			}
			return "", nil
		}
	}

	results := parseMatches(stdout)
	if len(results) == 0 {
		return "", nil
	}

	return strings.Join(capResults(results), "\n"), nil
}

// parseMatches extracts formatted match lines from rg's line-delimited JSON
// output. Malformed records are skipped, not fatal.
func parseMatches(output []byte) []string {
	var results []string
	for _, line := range strings.Split(string(output), "\n") {
		if line == "" {
			continue
		}
		var ev matchEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.Type != "match" {
			continue
		}
		results = append(results, fmt.Sprintf("%s:%d: %s",
			ev.Data.Path.Text, ev.Data.LineNumber, strings.TrimSpace(ev.Data.Lines.Text)))
	}
	return results
}

// capResults truncates to MaxResults entries, appending an omission marker
// with the true overflow count so callers can tell "exactly 50" from "more".
func capResults(results []string) []string {
	if len(results) <= MaxResults {
		return results
	}
	omitted := len(results) - MaxResults
	capped := append([]string{}, results[:MaxResults]...)
	return append(capped, fmt.Sprintf("... (%d more matches omitted)", omitted))
}

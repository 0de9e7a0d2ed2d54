// Package mcp implements the Model Context Protocol stdio server that
// fronts the source registry: JSON-RPC 2.0 over line-delimited stdin/stdout,
// with tool calls dispatched to the registered sources.
package mcp

import (
	"bufio"
	"io"
	"log/slog"
	"os"

	"github.com/sharkymark/nuon-mcp/internal/source"
)

// Server represents the MCP server
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *slog.Logger
	version string

	registry *source.Registry
	tools    map[string]ToolHandler
}

// NewServer creates an MCP server over the given source registry.
func NewServer(version string, registry *source.Registry, logger *slog.Logger) *Server {
	server := &Server{
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		logger:   logger,
		version:  version,
		registry: registry,
		tools:    make(map[string]ToolHandler),
	}

	server.registerTools()

	return server
}

// Start begins processing messages until EOF on stdin.
func (s *Server) Start() error {
	s.logger.Info("MCP server starting",
		"version", s.version,
		"sources", s.registry.Len(),
	)

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)")
				return nil
			}
			s.logger.Error("Error reading message",
				"error", err.Error(),
			)
			continue
		}

		response := s.handleMessage(msg)

		// Notifications don't generate responses
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response",
					"error", err.Error(),
				)
			}
		}
	}
}

// SetStdin sets the input stream (for testing)
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil // recreate the scanner with the new reader
}

// SetStdout sets the output stream (for testing)
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}

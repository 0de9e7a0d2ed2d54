package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// handleMessage processes an incoming MCP message and returns a response,
// or nil when none is due (notifications).
func (s *Server) handleMessage(msg *Message) *Message {
	if msg.IsRequest() {
		return s.handleRequest(msg)
	}

	if msg.IsNotification() {
		s.handleNotification(msg)
		return nil
	}

	return NewErrorMessage(msg.Id, InvalidRequest, "Invalid message: not a request or notification")
}

// handleRequest handles a JSON-RPC request
func (s *Server) handleRequest(msg *Message) *Message {
	s.logger.Debug("Handling request",
		"method", msg.Method,
		"id", msg.Id,
	)

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "tools/list":
		return s.handleListTools(msg)
	case "tools/call":
		return s.handleCallTool(msg)
	default:
		return NewErrorMessage(msg.Id, MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method))
	}
}

// handleNotification handles a JSON-RPC notification
func (s *Server) handleNotification(msg *Message) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("Client initialized")
	default:
		s.logger.Debug("Unknown notification",
			"method", msg.Method,
		)
	}
}

// ServerCapabilities represents the capabilities exposed by the server
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability represents the tools capability
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerInfo identifies the server to the client
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult represents the result of the initialize request
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// handleInitialize handles the initialize request
func (s *Server) handleInitialize(msg *Message) *Message {
	params, _ := msg.Params.(map[string]interface{})
	s.logger.Info("MCP server initializing",
		"clientInfo", params["clientInfo"],
	)

	return NewResultMessage(msg.Id, &InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    "nuon-mcp",
			Version: s.version,
		},
	})
}

// handleListTools handles the tools/list request
func (s *Server) handleListTools(msg *Message) *Message {
	return NewResultMessage(msg.Id, map[string]interface{}{
		"tools": s.GetToolDefinitions(),
	})
}

// handleCallTool executes a tool. Tool failures are returned as in-band text
// content, not protocol errors — a bad label or an escaped path is a result
// the client should see, not a reason to break the JSON-RPC session.
func (s *Server) handleCallTool(msg *Message) *Message {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected object")
	}

	toolName, ok := params["name"].(string)
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: missing tool name")
	}

	arguments, ok := params["arguments"].(map[string]interface{})
	if !ok {
		arguments = make(map[string]interface{})
	}

	handler, exists := s.tools[toolName]
	if !exists {
		return textResult(msg.Id, fmt.Sprintf("Unknown tool: %s", toolName))
	}

	callID := uuid.NewString()
	s.logger.Info("Calling tool",
		"tool", toolName,
		"callId", callID,
	)

	text, err := handler(context.Background(), arguments)
	if err != nil {
		s.logger.Warn("Tool call failed",
			"tool", toolName,
			"callId", callID,
			"error", err.Error(),
		)
		return textResult(msg.Id, fmt.Sprintf("Error: %s", err.Error()))
	}

	return textResult(msg.Id, text)
}

// textResult wraps text in the MCP tool-result content envelope.
func textResult(id interface{}, text string) *Message {
	return NewResultMessage(id, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": text,
			},
		},
	})
}

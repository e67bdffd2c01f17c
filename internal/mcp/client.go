// Package mcp connects to external MCP stdio servers and exposes
// their tools to the proactive agent.
package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcpproto "github.com/mark3labs/mcp-go/mcp"

	"github.com/contentduet/duet/internal/agent"
	"github.com/contentduet/duet/internal/logging"
)

// ServerConfig describes one MCP server to launch over stdio.
type ServerConfig struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Env     []string `yaml:"env,omitempty"`
}

// Client manages MCP server connections for the lifetime of the
// process. Connection failures are reported but never fatal: the
// pipeline degrades to running without the server's tools.
type Client struct {
	mu      sync.RWMutex
	servers map[string]*serverConn
	log     *logging.Logger
}

type serverConn struct {
	config    ServerConfig
	transport *transport.Stdio
	client    *client.Client
	tools     []mcpproto.Tool
}

func NewClient(log *logging.Logger) *Client {
	if log == nil {
		log = logging.NewNop()
	}
	return &Client{
		servers: make(map[string]*serverConn),
		log:     log,
	}
}

// Connect launches and initializes one MCP server.
func (c *Client) Connect(ctx context.Context, cfg ServerConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.servers[cfg.Name]; exists {
		return fmt.Errorf("server %s already connected", cfg.Name)
	}

	c.log.Info("connecting MCP server", "name", cfg.Name, "command", cfg.Command)

	stdio := transport.NewStdio(cfg.Command, cfg.Env, cfg.Args...)
	if err := stdio.Start(ctx); err != nil {
		return fmt.Errorf("start MCP transport: %w", err)
	}

	mcpClient := client.NewClient(stdio)

	initReq := mcpproto.InitializeRequest{}
	initReq.Params.ClientInfo = mcpproto.Implementation{
		Name:    "duet",
		Version: "1.0.0",
	}
	initReq.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION

	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		_ = stdio.Close()
		return fmt.Errorf("initialize MCP connection: %w", err)
	}

	toolsResp, err := mcpClient.ListTools(ctx, mcpproto.ListToolsRequest{})
	if err != nil {
		_ = stdio.Close()
		return fmt.Errorf("list MCP tools: %w", err)
	}

	c.log.Info("MCP server connected", "name", cfg.Name, "tools", len(toolsResp.Tools))

	c.servers[cfg.Name] = &serverConn{
		config:    cfg,
		transport: stdio,
		client:    mcpClient,
		tools:     toolsResp.Tools,
	}
	return nil
}

// Close shuts down every connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, conn := range c.servers {
		if err := conn.transport.Close(); err != nil {
			c.log.Warn("closing MCP connection", "name", name, "error", err)
		}
	}
	c.servers = make(map[string]*serverConn)
}

// Tools returns every connected server's tools wrapped as agent tools.
func (c *Client) Tools() []agent.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var tools []agent.Tool
	for serverName, conn := range c.servers {
		for _, mcpTool := range conn.tools {
			tools = append(tools, &remoteTool{
				serverName: serverName,
				tool:       mcpTool,
				client:     c,
			})
		}
	}
	return tools
}

func (c *Client) callTool(ctx context.Context, serverName, toolName string, args map[string]interface{}) (string, error) {
	c.mu.RLock()
	conn, exists := c.servers[serverName]
	c.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("server %s not connected", serverName)
	}

	req := mcpproto.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args

	result, err := conn.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("MCP tool call failed: %w", err)
	}

	var content string
	for _, item := range result.Content {
		if textContent, ok := item.(mcpproto.TextContent); ok {
			content += textContent.Text
		}
	}
	if result.IsError {
		return "", fmt.Errorf("MCP tool error: %s", content)
	}
	return content, nil
}

// remoteTool adapts one MCP tool to the agent.Tool interface.
type remoteTool struct {
	serverName string
	tool       mcpproto.Tool
	client     *Client
}

func (t *remoteTool) Name() string {
	return fmt.Sprintf("mcp_%s_%s", t.serverName, t.tool.Name)
}

func (t *remoteTool) Description() string {
	return fmt.Sprintf("[MCP:%s] %s", t.serverName, t.tool.Description)
}

func (t *remoteTool) Parameters() map[string]interface{} {
	if t.tool.InputSchema.Properties == nil {
		return map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": t.tool.InputSchema.Properties,
		"required":   t.tool.InputSchema.Required,
	}
}

func (t *remoteTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	result, err := t.client.callTool(ctx, t.serverName, t.tool.Name, args)
	if err != nil {
		return map[string]interface{}{
			"error":   err.Error(),
			"success": false,
		}, nil
	}
	return map[string]interface{}{
		"result":  result,
		"success": true,
	}, nil
}

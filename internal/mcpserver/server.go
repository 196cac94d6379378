// Package mcpserver exposes release coordination over the Model Context
// Protocol so AI assistants and other MCP clients can plan, validate and
// run releases and query release history.
package mcpserver

import (
	"fmt"
	"net/http"

	"convoy/internal/coordinator"
	"convoy/internal/registry"
	"convoy/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Config holds the collaborators for an MCP server.
type Config struct {
	// Coordinator runs releases on behalf of the coordinate_release tool.
	// Required.
	Coordinator *coordinator.Coordinator

	// Registry answers history and statistics queries. Required.
	Registry *registry.Registry

	// ManifestPath locates the services manifest used when a tool call
	// omits its services argument. Optional.
	ManifestPath string

	// Version is reported to MCP clients during initialization.
	Version string
}

// Server serves the release coordination tools over MCP.
type Server struct {
	coordinator  *coordinator.Coordinator
	registry     *registry.Registry
	manifestPath string
	mcpServer    *server.MCPServer
}

// NewServer creates an MCP server with all coordination tools registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Coordinator == nil {
		return nil, fmt.Errorf("mcp server requires a coordinator")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("mcp server requires a registry")
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		coordinator:  cfg.Coordinator,
		registry:     cfg.Registry,
		manifestPath: cfg.ManifestPath,
		mcpServer: server.NewMCPServer(
			"convoy",
			version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithPromptCapabilities(false),
		),
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	coordinateReleaseTool := mcp.NewTool("coordinate_release",
		mcp.WithDescription("Coordinate a multi-service release: validate, plan batches, deploy and record the outcome"),
		mcp.WithString("environment",
			mcp.Required(),
			mcp.Description("Deployment target: staging or production"),
		),
		mcp.WithString("releaseName",
			mcp.Description("Optional human-readable label for the release"),
		),
		mcp.WithString("strategy",
			mcp.Description("Batch strategy: sequential, parallel or dependency-order (default)"),
		),
		mcp.WithBoolean("rollbackOnFailure",
			mcp.Description("Roll back already deployed services when a later service fails"),
		),
		mcp.WithArray("services",
			mcp.Description("Service declarations (name, version, dependencies, config); omit to use the services manifest"),
		),
	)
	s.mcpServer.AddTool(coordinateReleaseTool, s.handleCoordinateRelease)

	validateServicesTool := mcp.NewTool("validate_services",
		mcp.WithDescription("Validate service declarations: duplicate names, self, missing and circular dependencies"),
		mcp.WithArray("services",
			mcp.Description("Service declarations to validate; omit to use the services manifest"),
		),
	)
	s.mcpServer.AddTool(validateServicesTool, s.handleValidateServices)

	planReleaseTool := mcp.NewTool("plan_release",
		mcp.WithDescription("Compute the batched deployment plan without deploying anything"),
		mcp.WithString("strategy",
			mcp.Description("Batch strategy: sequential, parallel or dependency-order (default)"),
		),
		mcp.WithArray("services",
			mcp.Description("Service declarations to plan; omit to use the services manifest"),
		),
	)
	s.mcpServer.AddTool(planReleaseTool, s.handlePlanRelease)

	getReleaseTool := mcp.NewTool("get_release",
		mcp.WithDescription("Get one release record by id, or the latest release for an environment"),
		mcp.WithString("releaseId",
			mcp.Description("Release id to look up"),
		),
		mcp.WithString("environment",
			mcp.Description("Return the latest release for this environment instead of looking up by id"),
		),
	)
	s.mcpServer.AddTool(getReleaseTool, s.handleGetRelease)

	listReleasesTool := mcp.NewTool("list_releases",
		mcp.WithDescription("List stored releases newest first, optionally filtered and paged"),
		mcp.WithString("environment",
			mcp.Description("Keep only releases for this environment"),
		),
		mcp.WithString("status",
			mcp.Description("Keep only releases in this lifecycle state"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Page size (default 50, max 1000)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Releases to skip from the newest end"),
		),
	)
	s.mcpServer.AddTool(listReleasesTool, s.handleListReleases)

	getReleaseStatisticsTool := mcp.NewTool("get_release_statistics",
		mcp.WithDescription("Get success rate, average duration and counts derived from stored releases"),
		mcp.WithString("environment",
			mcp.Description("Restrict statistics to one environment; omit for all"),
		),
	)
	s.mcpServer.AddTool(getReleaseStatisticsTool, s.handleGetReleaseStatistics)
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	logging.Info("MCPServer", "Serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over HTTP with SSE transport on the given address.
func (s *Server) ServeSSE(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	baseURL := fmt.Sprintf("http://%s:%d", host, port)

	sseServer := server.NewSSEServer(
		s.mcpServer,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
	)

	logging.Info("MCPServer", "Serving MCP over SSE on %s", addr)
	if err := sseServer.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

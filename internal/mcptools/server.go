// Package mcptools exposes projects and deliberation sessions as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewHiveMCPServer creates an MCP server with the six hive tools registered.
func NewHiveMCPServer(svc *HiveService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hive",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_project",
		Description: "Create a project from free-text requirements and start its workflow in the background. Returns the project ID immediately.",
	}, svc.CreateProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_project_status",
		Description: "Get the phase, progress percentage, failure details and per-phase artifacts of a project.",
	}, svc.GetProjectStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List every project with its phase and progress.",
	}, svc.ListProjects)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "deliberate",
		Description: "Run a full deliberation on a topic: independent analyses, discussion rounds, synthesis and consensus voting. Blocks until the session ends and returns the final decision.",
	}, svc.Deliberate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List deliberation sessions, optionally only those of one project.",
	}, svc.ListSessions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transcript",
		Description: "Return the append-only transcript of a deliberation session, optionally filtered by message type.",
	}, svc.GetTranscript)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP at addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewNavServer creates an MCP server with the code navigation tools
// registered.
func NewNavServer(svc *NavService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codenav",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hover_symbol",
		Description: "Look up hover information (type signature, documentation) for a symbol. Takes a file path, an optional line given as a number or a substring of the line, and the target identifier; resolves the exact position and queries the language server.",
	}, svc.HoverSymbol)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_file",
		Description: "Move a source file to a new path and automatically update import statements across the project to keep them resolvable. Returns a human-readable report of every changed file.",
	}, svc.MoveFile)

	return server
}

// RunStdio serves the navigation tools over stdio until ctx is cancelled.
func RunStdio(ctx context.Context, svc *NavService) error {
	return NewNavServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts an HTTP server exposing the navigation tools at addr.
func RunHTTP(ctx context.Context, svc *NavService, addr string) error {
	server := NewNavServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

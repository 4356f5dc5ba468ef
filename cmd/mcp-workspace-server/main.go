package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swarnimaj/plugin-react-app-builder/internal/workspace"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	projectsRoot := getEnv("PROJECTS_ROOT", "projects")
	templateArchive := getEnv("TEMPLATE_ARCHIVE", "project.tar.gz")

	log.Println("[MCP Workspace Server] Starting Workspace MCP Server v1.0.0")
	log.Printf("[MCP Workspace Server] Projects root: %s", projectsRoot)
	log.Printf("[MCP Workspace Server] Template archive: %s", templateArchive)

	resolver, err := workspace.NewResolver(projectsRoot)
	if err != nil {
		log.Fatalf("[MCP Workspace Server] Failed to initialize projects root: %v", err)
	}
	bootstrapper := workspace.NewBootstrapper(projectsRoot, templateArchive)

	h := newHandler(resolver, bootstrapper)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "workspace-server",
		Version: "v1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_project",
		Description: "Create a new React project directory seeded from the template archive",
	}, h.HandleCreateProject)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_files",
		Description: "List files in a project directory, excluding node_modules and generated UI components",
	}, h.HandleListFiles)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_file",
		Description: "Read the content of a file inside a project",
	}, h.HandleReadFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "write_file",
		Description: "Create or replace a file inside a project",
	}, h.HandleWriteFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_file",
		Description: "Delete a file inside a project",
	}, h.HandleDeleteFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_file_regex",
		Description: "Replace a regular expression match in a project file, first match or all matches",
	}, h.HandleEditFileRegex)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_replace_file",
		Description: "Replace a literal string in a project file, first occurrence or all occurrences",
	}, h.HandleSearchReplaceFile)
	log.Println("[MCP Workspace Server] Registered 7 workspace tools")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[MCP Workspace Server] Received shutdown signal")
		cancel()
	}()

	log.Println("[MCP Workspace Server] Starting on stdio transport...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("[MCP Workspace Server] Server error: %v", err)
	}
	log.Println("[MCP Workspace Server] Server stopped gracefully")
}

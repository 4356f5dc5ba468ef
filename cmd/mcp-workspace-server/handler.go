package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swarnimaj/plugin-react-app-builder/internal/workspace"
)

// handler exposes workspace operations as MCP tools. Tool results carry
// the same client-facing messages as the HTTP API so agents see one
// vocabulary regardless of transport.
type handler struct {
	resolver     *workspace.Resolver
	bootstrapper *workspace.Bootstrapper
}

func newHandler(resolver *workspace.Resolver, bootstrapper *workspace.Bootstrapper) *handler {
	return &handler{resolver: resolver, bootstrapper: bootstrapper}
}

// CreateProjectParams defines the input parameters for create_project.
type CreateProjectParams struct {
	ProjectName string `json:"project_name" jsonschema:"Name of the project directory to create"`
}

// ListFilesParams defines the input parameters for list_files.
type ListFilesParams struct {
	ProjectName string `json:"project_name" jsonschema:"Name of the project"`
	Filepath    string `json:"filepath,omitempty" jsonschema:"Directory inside the project to list, defaults to the project root"`
}

// ReadFileParams defines the input parameters for read_file.
type ReadFileParams struct {
	ProjectName string `json:"project_name" jsonschema:"Name of the project"`
	Filepath    string `json:"filepath" jsonschema:"File path relative to the project root"`
}

// WriteFileParams defines the input parameters for write_file.
type WriteFileParams struct {
	ProjectName string `json:"project_name" jsonschema:"Name of the project"`
	Filepath    string `json:"filepath" jsonschema:"File path relative to the project root"`
	Content     string `json:"content" jsonschema:"Full content to write"`
}

// DeleteFileParams defines the input parameters for delete_file.
type DeleteFileParams struct {
	ProjectName string `json:"project_name" jsonschema:"Name of the project"`
	Filepath    string `json:"filepath" jsonschema:"File path relative to the project root"`
}

// EditFileRegexParams defines the input parameters for edit_file_regex.
type EditFileRegexParams struct {
	ProjectName string `json:"project_name" jsonschema:"Name of the project"`
	Filepath    string `json:"filepath" jsonschema:"File path relative to the project root"`
	Regex       string `json:"regex" jsonschema:"Go regular expression to match"`
	Content     string `json:"content" jsonschema:"Replacement text"`
	Multiple    bool   `json:"multiple,omitempty" jsonschema:"Replace every match instead of only the first"`
}

// SearchReplaceParams defines the input parameters for search_replace_file.
type SearchReplaceParams struct {
	ProjectName string `json:"project_name" jsonschema:"Name of the project"`
	Filepath    string `json:"filepath" jsonschema:"File path relative to the project root"`
	Search      string `json:"search" jsonschema:"Literal text to find"`
	Replace     string `json:"replace" jsonschema:"Replacement text"`
	Multiple    bool   `json:"multiple,omitempty" jsonschema:"Replace every occurrence instead of only the first"`
}

// HandleCreateProject handles the create_project tool call.
func (h *handler) HandleCreateProject(ctx context.Context, req *mcp.CallToolRequest, params CreateProjectParams) (*mcp.CallToolResult, any, error) {
	if params.ProjectName == "" {
		return nil, nil, fmt.Errorf("project_name parameter is required")
	}
	log.Printf("[MCP Workspace Server] create_project %q", params.ProjectName)

	if _, err := h.bootstrapper.Create(ctx, params.ProjectName); err != nil {
		if errors.Is(err, workspace.ErrPathForbidden) {
			return errorResult("Access outside the project directory is forbidden."), nil, nil
		}
		return errorResult(fmt.Sprintf("Failed to create project: %v", err)), nil, nil
	}
	return textResult(fmt.Sprintf("Project '%s' created successfully", params.ProjectName)), nil, nil
}

// HandleListFiles handles the list_files tool call.
func (h *handler) HandleListFiles(ctx context.Context, req *mcp.CallToolRequest, params ListFilesParams) (*mcp.CallToolResult, any, error) {
	if params.ProjectName == "" {
		return nil, nil, fmt.Errorf("project_name parameter is required")
	}

	root, res := h.resolveProject(params.ProjectName)
	if res != nil {
		return res, nil, nil
	}

	files, err := workspace.ListFiles(root, params.Filepath)
	if err != nil {
		if errors.Is(err, workspace.ErrFileNotFound) {
			return errorResult(fmt.Sprintf("Directory '%s' not found.", params.Filepath)), nil, nil
		}
		return h.fileError(err, params.Filepath), nil, nil
	}
	if len(files) == 0 {
		return textResult(fmt.Sprintf("No files found in the directory '%s'.", params.Filepath)), nil, nil
	}

	payload, err := json.Marshal(files)
	if err != nil {
		return nil, nil, fmt.Errorf("encode file list: %w", err)
	}
	return textResult(string(payload)), nil, nil
}

// HandleReadFile handles the read_file tool call.
func (h *handler) HandleReadFile(ctx context.Context, req *mcp.CallToolRequest, params ReadFileParams) (*mcp.CallToolResult, any, error) {
	if params.ProjectName == "" {
		return nil, nil, fmt.Errorf("project_name parameter is required")
	}
	if params.Filepath == "" {
		return nil, nil, fmt.Errorf("filepath parameter is required")
	}

	root, res := h.resolveProject(params.ProjectName)
	if res != nil {
		return res, nil, nil
	}

	content, err := workspace.ReadFile(root, params.Filepath)
	if err != nil {
		return h.fileError(err, params.Filepath), nil, nil
	}
	return textResult(content), nil, nil
}

// HandleWriteFile handles the write_file tool call.
func (h *handler) HandleWriteFile(ctx context.Context, req *mcp.CallToolRequest, params WriteFileParams) (*mcp.CallToolResult, any, error) {
	if params.ProjectName == "" {
		return nil, nil, fmt.Errorf("project_name parameter is required")
	}
	if params.Filepath == "" {
		return nil, nil, fmt.Errorf("filepath parameter is required")
	}

	root, res := h.resolveProject(params.ProjectName)
	if res != nil {
		return res, nil, nil
	}

	if err := workspace.WriteFile(root, params.Filepath, params.Content); err != nil {
		return h.fileError(err, params.Filepath), nil, nil
	}
	return textResult(fmt.Sprintf("File '%s' created/replaced successfully.", params.Filepath)), nil, nil
}

// HandleDeleteFile handles the delete_file tool call.
func (h *handler) HandleDeleteFile(ctx context.Context, req *mcp.CallToolRequest, params DeleteFileParams) (*mcp.CallToolResult, any, error) {
	if params.ProjectName == "" {
		return nil, nil, fmt.Errorf("project_name parameter is required")
	}
	if params.Filepath == "" {
		return nil, nil, fmt.Errorf("filepath parameter is required")
	}

	root, res := h.resolveProject(params.ProjectName)
	if res != nil {
		return res, nil, nil
	}

	if err := workspace.DeleteFile(root, params.Filepath); err != nil {
		return h.fileError(err, params.Filepath), nil, nil
	}
	return textResult(fmt.Sprintf("File '%s' deleted successfully.", params.Filepath)), nil, nil
}

// HandleEditFileRegex handles the edit_file_regex tool call.
func (h *handler) HandleEditFileRegex(ctx context.Context, req *mcp.CallToolRequest, params EditFileRegexParams) (*mcp.CallToolResult, any, error) {
	if params.ProjectName == "" {
		return nil, nil, fmt.Errorf("project_name parameter is required")
	}
	if params.Filepath == "" {
		return nil, nil, fmt.Errorf("filepath parameter is required")
	}

	root, res := h.resolveProject(params.ProjectName)
	if res != nil {
		return res, nil, nil
	}

	if err := workspace.EditFileRegex(root, params.Filepath, params.Regex, params.Content, params.Multiple); err != nil {
		return h.fileError(err, params.Filepath), nil, nil
	}
	return textResult(fmt.Sprintf("File '%s' updated successfully.", params.Filepath)), nil, nil
}

// HandleSearchReplaceFile handles the search_replace_file tool call.
func (h *handler) HandleSearchReplaceFile(ctx context.Context, req *mcp.CallToolRequest, params SearchReplaceParams) (*mcp.CallToolResult, any, error) {
	if params.ProjectName == "" {
		return nil, nil, fmt.Errorf("project_name parameter is required")
	}
	if params.Filepath == "" {
		return nil, nil, fmt.Errorf("filepath parameter is required")
	}

	root, res := h.resolveProject(params.ProjectName)
	if res != nil {
		return res, nil, nil
	}

	if err := workspace.SearchReplaceFile(root, params.Filepath, params.Search, params.Replace, params.Multiple); err != nil {
		return h.fileError(err, params.Filepath), nil, nil
	}
	return textResult(fmt.Sprintf("File '%s' updated successfully.", params.Filepath)), nil, nil
}

// resolveProject maps a project name to its directory, or returns an
// error result when no such project exists.
func (h *handler) resolveProject(name string) (workspace.ProjectRoot, *mcp.CallToolResult) {
	root, err := h.resolver.Resolve(name)
	if err != nil {
		return "", errorResult(fmt.Sprintf("Project '%s' not found.", name))
	}
	return root, nil
}

// fileError maps workspace errors onto the client-facing messages.
func (h *handler) fileError(err error, filepath string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, workspace.ErrPathForbidden):
		return errorResult("Access outside the project directory is forbidden.")
	case errors.Is(err, workspace.ErrFileNotFound):
		return errorResult(fmt.Sprintf("File '%s' not found.", filepath))
	case errors.Is(err, workspace.ErrInvalidPattern):
		detail := strings.TrimPrefix(err.Error(), workspace.ErrInvalidPattern.Error()+": ")
		return errorResult("Invalid regex: " + detail)
	default:
		return errorResult(err.Error())
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + text}},
		IsError: true,
	}
}

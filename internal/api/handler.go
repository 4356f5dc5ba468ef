// Package api exposes the project workspace over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/swarnimaj/plugin-react-app-builder/internal/jobs"
	"github.com/swarnimaj/plugin-react-app-builder/internal/npm"
	"github.com/swarnimaj/plugin-react-app-builder/internal/screenshot"
	"github.com/swarnimaj/plugin-react-app-builder/internal/workspace"
)

// Handler serves the project workspace API.
type Handler struct {
	resolver     *workspace.Resolver
	bootstrapper *workspace.Bootstrapper
	npm          *npm.Runner
	screenshots  *screenshot.Capturer
	jobs         *jobs.Runner
	manifestPath string
}

// NewHandler creates a new API handler.
func NewHandler(resolver *workspace.Resolver, bootstrapper *workspace.Bootstrapper, npmRunner *npm.Runner, screenshots *screenshot.Capturer, jobsRunner *jobs.Runner, manifestPath string) *Handler {
	return &Handler{
		resolver:     resolver,
		bootstrapper: bootstrapper,
		npm:          npmRunner,
		screenshots:  screenshots,
		jobs:         jobsRunner,
		manifestPath: manifestPath,
	}
}

// RegisterRoutes attaches all API routes to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/manifest", h.Manifest).Methods(http.MethodGet)
	r.HandleFunc("/create_react_project", h.CreateProject).Methods(http.MethodPost)
	r.HandleFunc("/create_or_replace_file", h.CreateOrReplaceFile).Methods(http.MethodPost)
	r.HandleFunc("/delete_file", h.DeleteFile).Methods(http.MethodPost)
	r.HandleFunc("/get_file", h.GetFile).Methods(http.MethodPost)
	r.HandleFunc("/list_files", h.ListFiles).Methods(http.MethodPost)
	r.HandleFunc("/edit_file_regex", h.EditFileRegex).Methods(http.MethodPost)
	r.HandleFunc("/search_replace_file", h.SearchReplaceFile).Methods(http.MethodPost)
	r.HandleFunc("/install_npm_package", h.InstallPackage).Methods(http.MethodPost)
	r.HandleFunc("/remove_npm_package", h.RemovePackage).Methods(http.MethodPost)
	r.HandleFunc("/search_npm_package", h.SearchPackage).Methods(http.MethodPost)
	r.HandleFunc("/build", h.Build).Methods(http.MethodPost)
	r.HandleFunc("/lint", h.Lint).Methods(http.MethodPost)
	r.HandleFunc("/screenshot", h.Screenshot).Methods(http.MethodPost)
}

// Request bodies keep the original plugin's field names.
type projectRequest struct {
	ProjectName string `json:"project_name"`
}

type fileRequest struct {
	ProjectName string `json:"project_name"`
	Filepath    string `json:"filepath"`
}

type writeFileRequest struct {
	ProjectName string `json:"project_name"`
	Filepath    string `json:"filepath"`
	Content     string `json:"content"`
}

type regexEditRequest struct {
	ProjectName string `json:"project_name"`
	Filepath    string `json:"filepath"`
	Regex       string `json:"regex"`
	Content     string `json:"content"`
	Multiple    bool   `json:"multiple"`
}

type searchReplaceRequest struct {
	ProjectName string `json:"project_name"`
	Filepath    string `json:"filepath"`
	Search      string `json:"search"`
	Replace     string `json:"replace"`
	Multiple    bool   `json:"multiple"`
}

type packageRequest struct {
	ProjectName string `json:"project_name"`
	PackageName string `json:"package_name"`
	Version     string `json:"version"`
}

type screenshotRequest struct {
	URL string `json:"url"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Index identifies the service.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "react-app-builder",
		"status":  "ok",
	})
}

// Manifest serves the plugin manifest consumed by LobeChat.
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("File '%s' not found.", filepath.Base(h.manifestPath)))
		return
	}
	if err != nil {
		log.Printf("Error reading manifest: %v", err)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	var manifest any
	if err := json.Unmarshal(data, &manifest); err != nil {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("JSON decode error: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

// CreateProject provisions a fresh project from the configured template.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) {
		return
	}

	if _, err := h.bootstrapper.Create(r.Context(), req.ProjectName); err != nil {
		log.Printf("Error creating project: %v", err)
		switch {
		case errors.Is(err, workspace.ErrPathForbidden):
			writeDetail(w, http.StatusForbidden, "Access outside the project directory is forbidden.")
		case errors.Is(err, jobs.ErrQueueFull), errors.Is(err, jobs.ErrQueueClosed):
			writeDetail(w, http.StatusServiceUnavailable, fmt.Sprintf("Failed to create project: %v", err))
		default:
			writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create project: %v", err))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Project '%s' created successfully", req.ProjectName),
	})
}

// CreateOrReplaceFile writes a whole file, creating parent directories as
// needed.
func (h *Handler) CreateOrReplaceFile(w http.ResponseWriter, r *http.Request) {
	var req writeFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) || !requireField(w, "filepath", req.Filepath) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	if err := workspace.WriteFile(root, req.Filepath, req.Content); err != nil {
		log.Printf("Error creating/replacing file: %v", err)
		h.writeFileError(w, err, req.Filepath)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("File '%s' created/replaced successfully.", req.Filepath),
	})
}

// DeleteFile removes a single file from a project.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) || !requireField(w, "filepath", req.Filepath) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	if err := workspace.DeleteFile(root, req.Filepath); err != nil {
		log.Printf("Error deleting file: %v", err)
		h.writeFileError(w, err, req.Filepath)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("File '%s' deleted successfully.", req.Filepath),
	})
}

// GetFile returns a file's contents.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) || !requireField(w, "filepath", req.Filepath) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	content, err := workspace.ReadFile(root, req.Filepath)
	if err != nil {
		log.Printf("Error reading file: %v", err)
		h.writeFileError(w, err, req.Filepath)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": content})
}

// ListFiles walks a project subtree, skipping dependency and generated
// component directories.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	files, err := workspace.ListFiles(root, req.Filepath)
	if err != nil {
		log.Printf("Error listing files: %v", err)
		if errors.Is(err, workspace.ErrFileNotFound) {
			writeDetail(w, http.StatusNotFound, fmt.Sprintf("Directory '%s' not found.", req.Filepath))
			return
		}
		h.writeFileError(w, err, req.Filepath)
		return
	}

	if len(files) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": fmt.Sprintf("No files found in the directory '%s'.", req.Filepath),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "files": files})
}

// EditFileRegex rewrites file content with a regular expression.
func (h *Handler) EditFileRegex(w http.ResponseWriter, r *http.Request) {
	var req regexEditRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) || !requireField(w, "filepath", req.Filepath) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	if err := workspace.EditFileRegex(root, req.Filepath, req.Regex, req.Content, req.Multiple); err != nil {
		log.Printf("Error editing file with regex: %v", err)
		h.writeFileError(w, err, req.Filepath)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("File '%s' updated successfully.", req.Filepath),
	})
}

// SearchReplaceFile rewrites file content with a literal substitution.
func (h *Handler) SearchReplaceFile(w http.ResponseWriter, r *http.Request) {
	var req searchReplaceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) || !requireField(w, "filepath", req.Filepath) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	if err := workspace.SearchReplaceFile(root, req.Filepath, req.Search, req.Replace, req.Multiple); err != nil {
		log.Printf("Error searching and replacing in file: %v", err)
		h.writeFileError(w, err, req.Filepath)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("File '%s' updated successfully.", req.Filepath),
	})
}

// InstallPackage runs npm install for a package, optionally pinned to a
// version.
func (h *Handler) InstallPackage(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) || !requireField(w, "package_name", req.PackageName) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	if err := h.npm.Install(r.Context(), string(root), req.PackageName, req.Version); err != nil {
		log.Printf("Error installing npm package: %v", err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error installing package: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Package '%s' installed successfully.", req.PackageName),
	})
}

// RemovePackage runs npm uninstall for a package.
func (h *Handler) RemovePackage(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) || !requireField(w, "package_name", req.PackageName) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	if err := h.npm.Uninstall(r.Context(), string(root), req.PackageName); err != nil {
		log.Printf("Error removing npm package: %v", err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error removing package: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Package '%s' removed successfully.", req.PackageName),
	})
}

// SearchPackage queries the npm registry.
func (h *Handler) SearchPackage(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) || !requireField(w, "package_name", req.PackageName) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	results, err := h.npm.Search(r.Context(), string(root), req.PackageName)
	if err != nil {
		log.Printf("Error searching npm package: %v", err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error searching for package: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})
}

// Build runs the project's npm build script and reports its output.
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	stdout, stderr, err := h.npm.RunScript(r.Context(), string(root), "build")
	if err != nil {
		log.Printf("Error building project: %v", err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error during build: STDOUT:\n%s\nSTDERR:\n%s", stdout, stderr))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "output": stdout})
}

// Lint runs the project's npm lint script. Lint findings are not an HTTP
// error; the response carries success=false with the linter's stderr.
func (h *Handler) Lint(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireField(w, "project_name", req.ProjectName) {
		return
	}
	root, ok := h.resolveProject(w, req.ProjectName)
	if !ok {
		return
	}

	stdout, stderr, err := h.npm.RunScript(r.Context(), string(root), "lint")
	if err != nil {
		log.Printf("Error linting project: %v", err)
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "output": stderr})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "output": stdout})
}

// Screenshot queues a background capture of the given URL and returns
// immediately; failures surface only in the job record.
func (h *Handler) Screenshot(w http.ResponseWriter, r *http.Request) {
	var req screenshotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		req.URL = "/"
	}

	url := req.URL
	id, err := h.jobs.Submit("screenshot "+url, "", func(ctx context.Context) error {
		_, err := h.screenshots.Capture(ctx, url)
		return err
	})
	if err != nil {
		log.Printf("Failed to queue screenshot: %v", err)
		switch {
		case errors.Is(err, jobs.ErrQueueFull):
			writeDetail(w, http.StatusServiceUnavailable, "Task queue is busy, try again later")
		case errors.Is(err, jobs.ErrQueueClosed):
			writeDetail(w, http.StatusServiceUnavailable, "Task queue unavailable")
		default:
			writeDetail(w, http.StatusInternalServerError, "Failed to queue screenshot")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Screenshot task added to background tasks.",
		"job_id":  id,
	})
}

// resolveProject maps a failed lookup to the 404 the clients expect.
func (h *Handler) resolveProject(w http.ResponseWriter, name string) (workspace.ProjectRoot, bool) {
	root, err := h.resolver.Resolve(name)
	if err != nil {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Project '%s' not found.", name))
		return "", false
	}
	return root, true
}

// writeFileError maps workspace sentinels onto the statuses and messages
// the original clients were built against.
func (h *Handler) writeFileError(w http.ResponseWriter, err error, filepath string) {
	switch {
	case errors.Is(err, workspace.ErrPathForbidden):
		writeDetail(w, http.StatusForbidden, "Access outside the project directory is forbidden.")
	case errors.Is(err, workspace.ErrFileNotFound):
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("File '%s' not found.", filepath))
	case errors.Is(err, workspace.ErrInvalidPattern):
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Invalid regex: %s", patternDetail(err)))
	default:
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

// patternDetail strips the sentinel prefix so the client sees the
// underlying compile error.
func patternDetail(err error) string {
	return strings.TrimPrefix(err.Error(), workspace.ErrInvalidPattern.Error()+": ")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("JSON decode error: %v", err))
		return false
	}
	return true
}

func requireField(w http.ResponseWriter, name, value string) bool {
	if strings.TrimSpace(value) == "" {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("%s is required", name))
		return false
	}
	return true
}

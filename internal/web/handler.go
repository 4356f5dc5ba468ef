// Package web renders a small HTML status UI for background jobs.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/swarnimaj/plugin-react-app-builder/internal/jobs"
)

//go:embed templates/*
var templatesFS embed.FS

// Handler handles web UI requests.
type Handler struct {
	store     *jobs.Store
	templates *template.Template
}

// NewHandler creates a new web handler. Template helpers must be attached
// before ParseFS or the templates fail to parse.
func NewHandler(store *jobs.Store) (*Handler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"statusColor":   statusColor,
		"statusIcon":    statusIcon,
		"logLevelColor": logLevelColor,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:     store,
		templates: tmpl,
	}, nil
}

// RegisterRoutes registers web UI routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/jobs", h.handleJobList).Methods("GET")
	r.HandleFunc("/jobs/{id}", h.handleJobDetail).Methods("GET")
}

// handleJobList renders the job list page, newest first.
func (h *Handler) handleJobList(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Jobs []jobs.Job
	}{
		Jobs: h.store.List(),
	}

	if err := h.templates.ExecuteTemplate(w, "job_list.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleJobDetail renders the job detail page with its log lines.
func (h *Handler) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	job, ok := h.store.Get(jobID)
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	data := struct {
		Job jobs.Job
	}{
		Job: job,
	}

	if err := h.templates.ExecuteTemplate(w, "job_detail.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Helper functions for templates
func statusColor(status jobs.Status) string {
	switch status {
	case jobs.StatusPending:
		return "#6c757d"
	case jobs.StatusRunning:
		return "#0d6efd"
	case jobs.StatusCompleted:
		return "#198754"
	case jobs.StatusFailed:
		return "#dc3545"
	default:
		return "#6c757d"
	}
}

func statusIcon(status jobs.Status) string {
	switch status {
	case jobs.StatusPending:
		return "○"
	case jobs.StatusRunning:
		return "⟳"
	case jobs.StatusCompleted:
		return "✓"
	case jobs.StatusFailed:
		return "✗"
	default:
		return "○"
	}
}

func logLevelColor(level string) string {
	switch strings.ToLower(level) {
	case "error":
		return "#dc3545"
	case "success":
		return "#198754"
	case "info":
		return "#0d6efd"
	default:
		return "#6c757d"
	}
}

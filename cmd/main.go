package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/swarnimaj/plugin-react-app-builder/internal/api"
	"github.com/swarnimaj/plugin-react-app-builder/internal/config"
	"github.com/swarnimaj/plugin-react-app-builder/internal/jobs"
	"github.com/swarnimaj/plugin-react-app-builder/internal/npm"
	"github.com/swarnimaj/plugin-react-app-builder/internal/screenshot"
	"github.com/swarnimaj/plugin-react-app-builder/internal/templates"
	"github.com/swarnimaj/plugin-react-app-builder/internal/web"
	"github.com/swarnimaj/plugin-react-app-builder/internal/workspace"
)

var (
	loadDotEnv         = godotenv.Load
	newJobStore        = jobs.NewStore
	newWebHandler      = web.NewHandler
	defaultListenServe = http.ListenAndServe
)

func main() {
	if err := run(context.Background(), defaultListenServe); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting react-app-builder server...")
	log.Printf("Port: %d", cfg.Port)
	log.Printf("Projects root: %s", cfg.ProjectsRoot)
	log.Printf("Template archive: %s", cfg.TemplateArchive)
	log.Printf("Job workers: %d, queue size: %d", cfg.JobWorkers, cfg.JobQueueSize)

	// Resolver maps project names to directories under the projects root.
	resolver, err := workspace.NewResolver(cfg.ProjectsRoot)
	if err != nil {
		return fmt.Errorf("failed to initialize project resolver: %w", err)
	}

	// In-memory job store plus worker pool for background work
	// (project bootstraps, screenshots).
	jobStore := newJobStore()
	jobRunner := jobs.NewRunner(jobStore, jobs.Config{
		Workers:   cfg.JobWorkers,
		QueueSize: cfg.JobQueueSize,
	})
	defer jobRunner.Shutdown(ctx)

	// Bootstrapper seeds new projects from the template archive. When a
	// template repository is configured, the archive is fetched from
	// GitHub instead of the local file.
	bootstrapper := workspace.NewBootstrapper(cfg.ProjectsRoot, cfg.TemplateArchive).
		WithOffloader(jobRunner)
	if cfg.TemplateRepo != "" {
		owner, repo := cfg.TemplateRepoParts()
		log.Printf("Template repository: %s/%s (ref %q)", owner, repo, cfg.TemplateRepoRef)
		bootstrapper.WithTemplateSource(templates.NewGitHubTemplate(owner, repo, cfg.TemplateRepoRef, cfg.GitHubToken))
	}

	npmRunner := npm.New()
	capturer := screenshot.New(cfg.ScreenshotCommand, cfg.ScreenshotDir)

	apiHandler := api.NewHandler(resolver, bootstrapper, npmRunner, capturer, jobRunner, cfg.ManifestPath)

	// Web UI handler for the jobs pages
	webHandler, err := newWebHandler(jobStore)
	if err != nil {
		return fmt.Errorf("failed to initialize web handler: %w", err)
	}

	// Setup router
	r := mux.NewRouter()
	apiHandler.RegisterRoutes(r)
	webHandler.RegisterRoutes(r)
	r.Use(api.AuthMiddleware(cfg.AuthSecret))

	// CORS for the plugin frontends
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost%s/health", addr)
	log.Printf("Plugin manifest: http://localhost%s/manifest", addr)
	log.Printf("Jobs UI: http://localhost%s/jobs", addr)

	if err := serve(addr, cors(r)); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// defaultOrigins covers local LobeChat development setups.
const defaultOrigins = "http://localhost,http://localhost:3010,http://localhost:8080"

// Config holds all configuration for the workspace service
type Config struct {
	// Server settings
	Port           int
	AllowedOrigins []string

	// Workspace settings
	ProjectsRoot    string
	TemplateArchive string
	ManifestPath    string

	// Template repository settings (optional GitHub tarball source)
	TemplateRepo    string // "owner/repo"
	TemplateRepoRef string
	GitHubToken     string

	// Screenshot settings
	ScreenshotCommand string
	ScreenshotDir     string

	// Job runner settings
	JobWorkers   int
	JobQueueSize int

	// Security settings
	AuthSecret string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvInt("PORT", 8000),
		AllowedOrigins:    splitOrigins(getEnv("ALLOWED_ORIGINS", defaultOrigins)),
		ProjectsRoot:      getEnv("PROJECTS_ROOT", "projects"),
		TemplateArchive:   getEnv("TEMPLATE_ARCHIVE", "project.tar.gz"),
		ManifestPath:      getEnv("MANIFEST_PATH", "lobechat-manifest.json"),
		TemplateRepo:      os.Getenv("TEMPLATE_REPO"),
		TemplateRepoRef:   os.Getenv("TEMPLATE_REPO_REF"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		ScreenshotCommand: getEnv("SCREENSHOT_COMMAND", "chromium"),
		ScreenshotDir:     getEnv("SCREENSHOT_DIR", "screenshots"),
		JobWorkers:        getEnvInt("JOB_WORKERS", 4),
		JobQueueSize:      getEnvInt("JOB_QUEUE_SIZE", 16),
		AuthSecret:        os.Getenv("AUTH_SECRET"),
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TemplateRepoParts splits TemplateRepo into its owner and repository
// halves. Both are empty when no template repository is configured.
func (c *Config) TemplateRepoParts() (owner, repo string) {
	if c.TemplateRepo == "" {
		return "", ""
	}
	owner, repo, _ = strings.Cut(c.TemplateRepo, "/")
	return owner, repo
}

// validate checks that the loaded configuration is usable
func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.ProjectsRoot == "" {
		return fmt.Errorf("PROJECTS_ROOT must not be empty")
	}
	if c.TemplateArchive == "" {
		return fmt.Errorf("TEMPLATE_ARCHIVE must not be empty")
	}
	if err := c.validateTemplateRepo(); err != nil {
		return err
	}

	c.applyJobDefaults()
	return c.validateJobConfig()
}

func (c *Config) validateTemplateRepo() error {
	if c.TemplateRepo == "" {
		return nil
	}
	owner, repo, ok := strings.Cut(c.TemplateRepo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("TEMPLATE_REPO must be in owner/repo form, got %q", c.TemplateRepo)
	}
	return nil
}

func (c *Config) applyJobDefaults() {
	if c.JobWorkers <= 0 {
		c.JobWorkers = 4
	}
	if c.JobQueueSize <= 0 {
		c.JobQueueSize = 16
	}
}

func (c *Config) validateJobConfig() error {
	if c.JobWorkers <= 0 {
		return fmt.Errorf("JOB_WORKERS must be greater than 0")
	}
	if c.JobQueueSize <= 0 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be greater than 0")
	}
	return nil
}

func splitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

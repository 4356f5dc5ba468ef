package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolver maps caller-supplied project identifiers to existing project
// directories.
type Resolver struct {
	projectsRoot string
	workdir      func() (string, error)
}

// NewResolver anchors resolution at projectsRoot, creating the directory
// when it does not exist yet.
func NewResolver(projectsRoot string) (*Resolver, error) {
	abs, err := filepath.Abs(projectsRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve projects root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create projects root: %w", err)
	}
	return &Resolver{projectsRoot: abs, workdir: os.Getwd}, nil
}

// ProjectsRoot returns the absolute directory under which named projects
// are created.
func (r *Resolver) ProjectsRoot() string {
	return r.projectsRoot
}

// Resolve maps an identifier to an existing project directory. An absolute
// identifier must itself be a directory and never falls through to the
// other candidates. A relative identifier is tried under the projects root
// first, then under the process working directory. Identifiers matching no
// directory yield ErrProjectNotFound.
func (r *Resolver) Resolve(identifier string) (ProjectRoot, error) {
	if filepath.IsAbs(identifier) {
		if isDir(identifier) {
			return ProjectRoot(filepath.Clean(identifier)), nil
		}
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, identifier)
	}
	if candidate := filepath.Join(r.projectsRoot, identifier); isDir(candidate) {
		return ProjectRoot(candidate), nil
	}
	if wd, err := r.workdir(); err == nil {
		if candidate := filepath.Join(wd, identifier); isDir(candidate) {
			return ProjectRoot(candidate), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrProjectNotFound, identifier)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

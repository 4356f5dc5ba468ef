package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// TemplateSource supplies the archive a new project is seeded from.
// Download returns a local archive path and a cleanup func for any
// temporary files it produced.
type TemplateSource interface {
	Download(ctx context.Context) (path string, cleanup func(), err error)
}

// Offloader runs a unit of work on a background pool and waits for its
// result. The bootstrapper uses it to keep archive extraction off the
// request path.
type Offloader interface {
	Do(ctx context.Context, name, key string, fn func(context.Context) error) error
}

// Bootstrapper creates project directories under the projects root and
// seeds them from a template archive.
type Bootstrapper struct {
	projectsRoot    string
	templateArchive string
	template        TemplateSource
	offload         Offloader
}

func NewBootstrapper(projectsRoot, templateArchive string) *Bootstrapper {
	return &Bootstrapper{projectsRoot: projectsRoot, templateArchive: templateArchive}
}

// WithTemplateSource seeds new projects from src instead of the local
// template archive.
func (b *Bootstrapper) WithTemplateSource(src TemplateSource) *Bootstrapper {
	b.template = src
	return b
}

// WithOffloader routes extraction through off instead of running it inline.
func (b *Bootstrapper) WithOffloader(off Offloader) *Bootstrapper {
	b.offload = off
	return b
}

// Create makes the project directory and unpacks the template archive into
// it. Creating a project that already exists re-extracts the template over
// it. A template archive in an unsupported format leaves the empty project
// directory behind and is not an error.
func (b *Bootstrapper) Create(ctx context.Context, name string) (ProjectRoot, error) {
	rootAbs, err := filepath.Abs(b.projectsRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathForbidden, err)
	}
	dest, err := Contain(ProjectRoot(rootAbs), name)
	if err != nil {
		return "", err
	}
	// A name like "" or "." addresses the projects root itself; refuse to
	// treat it as a project.
	if string(dest) == rootAbs {
		return "", fmt.Errorf("%w: %q is not a project name", ErrPathForbidden, name)
	}
	log.Printf("[Bootstrap] Creating project directory %s", dest)
	if err := os.MkdirAll(string(dest), 0o755); err != nil {
		return "", fmt.Errorf("create project directory %s: %w", name, err)
	}

	archive := b.templateArchive
	fetched := false
	if b.template != nil {
		path, cleanup, err := b.template.Download(ctx)
		if err != nil {
			return "", fmt.Errorf("download template: %w", err)
		}
		defer cleanup()
		archive = path
		fetched = true
	}

	extract := func(ctx context.Context) error {
		return ExtractArchive(archive, string(dest))
	}
	if b.offload != nil {
		err = b.offload.Do(ctx, "bootstrap "+name, name, extract)
	} else {
		err = extract(ctx)
	}
	switch {
	case errors.Is(err, ErrUnsupportedArchive):
		log.Printf("[Bootstrap] Skipping template for %s: %v", name, err)
	case err != nil:
		return "", err
	case fetched:
		// Repository tarballs wrap everything in a single top-level
		// directory; lift its contents into the project root.
		if err := flattenSingleDir(string(dest)); err != nil {
			return "", fmt.Errorf("normalize template layout: %w", err)
		}
	}
	return ProjectRoot(dest), nil
}

func flattenSingleDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}
	staging := filepath.Join(dir, entries[0].Name()+".unwrap")
	if err := os.Rename(filepath.Join(dir, entries[0].Name()), staging); err != nil {
		return err
	}
	children, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := os.Rename(filepath.Join(staging, child.Name()), filepath.Join(dir, child.Name())); err != nil {
			return err
		}
	}
	return os.Remove(staging)
}

package workspace

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ProjectRoot is the absolute path of a resolved project directory. Values
// come from Resolver.Resolve or Bootstrapper.Create and act as the boundary
// for every file operation.
type ProjectRoot string

// ContainedPath is an absolute path proven to live inside a ProjectRoot.
type ContainedPath string

// Contain joins relative onto root and verifies the result stays inside the
// root. Traversal sequences that escape the root yield ErrPathForbidden; the
// path is never clamped back inside. Failures during resolution also yield
// ErrPathForbidden so the check fails closed.
func Contain(root ProjectRoot, relative string) (ContainedPath, error) {
	rootAbs, err := filepath.Abs(string(root))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathForbidden, err)
	}
	target, err := filepath.Abs(filepath.Join(rootAbs, filepath.FromSlash(relative)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathForbidden, err)
	}
	// Prefix check includes the separator so a sibling like "project-data"
	// does not pass for root "project".
	if target != rootAbs && !strings.HasPrefix(target, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathForbidden, relative)
	}
	return ContainedPath(target), nil
}

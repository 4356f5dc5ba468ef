package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// Directories pruned wherever they appear below the walk start.
	excludedDirs = map[string]struct{}{
		"node_modules": {},
	}
	// Root-relative prefixes whose whole subtree is excluded, the walk
	// start included.
	excludedPathPrefixes = []string{
		"src/components/ui",
	}
)

// ListFiles walks the directory addressed by subpath inside root and
// returns the relative paths of all files underneath it. Paths are relative
// to the project root, slash separated and sorted. An existing directory
// with nothing to list returns an empty slice, not an error.
func ListFiles(root ProjectRoot, subpath string) ([]string, error) {
	start, err := Contain(root, subpath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(string(start))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, subpath)
	}
	rootAbs, err := filepath.Abs(string(root))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathForbidden, err)
	}

	var files []string
	err = filepath.Walk(string(start), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(rootAbs, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if path != string(start) {
				if _, ok := excludedDirs[info.Name()]; ok {
					return filepath.SkipDir
				}
			}
			for _, prefix := range excludedPathPrefixes {
				if strings.HasPrefix(rel, prefix) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", subpath, err)
	}
	sort.Strings(files)
	return files, nil
}

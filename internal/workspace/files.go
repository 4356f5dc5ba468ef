package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ReadFile returns the contents of the file addressed by relative inside
// root.
func ReadFile(root ProjectRoot, relative string) (string, error) {
	path, err := Contain(root, relative)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(string(path))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, relative)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", relative, err)
	}
	return string(data), nil
}

// WriteFile writes content to the file addressed by relative inside root,
// creating parent directories as needed. Existing files are overwritten;
// concurrent writers race and the last write wins.
func WriteFile(root ProjectRoot, relative, content string) error {
	path, err := Contain(root, relative)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o755); err != nil {
		return fmt.Errorf("create parent directories for %s: %w", relative, err)
	}
	if err := os.WriteFile(string(path), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", relative, err)
	}
	return nil
}

// DeleteFile removes the file addressed by relative inside root.
func DeleteFile(root ProjectRoot, relative string) error {
	path, err := Contain(root, relative)
	if err != nil {
		return err
	}
	if err := os.Remove(string(path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, relative)
		}
		return fmt.Errorf("delete %s: %w", relative, err)
	}
	return nil
}

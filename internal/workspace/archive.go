package workspace

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks archive into dest, creating dest when absent.
// Dispatch is purely on the file name suffix: ".zip", ".tar.gz" and ".tgz"
// are supported, anything else yields ErrUnsupportedArchive after the
// destination has been created. Entries that would land outside dest are
// rejected with ErrPathForbidden.
func ExtractArchive(archive, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", dest, err)
	}
	switch {
	case strings.HasSuffix(archive, ".zip"):
		return extractZip(archive, dest)
	case strings.HasSuffix(archive, ".tar.gz"), strings.HasSuffix(archive, ".tgz"):
		return extractTarGz(archive, dest)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archive))
	}
}

func extractZip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer r.Close()
	for _, f := range r.File {
		target, err := Contain(ProjectRoot(dest), f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(string(target), 0o755); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		err = writeEntry(string(target), f.Mode(), rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		target, cerr := Contain(ProjectRoot(dest), hdr.Name)
		if cerr != nil {
			return cerr
		}
		// Only directories and regular files are materialized; project
		// templates carry nothing else.
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(string(target), 0o755); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
		case tar.TypeReg:
			if err := writeEntry(string(target), hdr.FileInfo().Mode(), tr); err != nil {
				return err
			}
		}
	}
}

func writeEntry(target string, mode fs.FileMode, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return nil
}

package workspace

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func makeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

func makeTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("tar write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
}

func TestExtractArchiveZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "template.zip")
	makeZip(t, archive, map[string]string{
		"package.json": `{"name":"app"}`,
		"src/App.tsx":  "export default function App() {}\n",
	})

	dest := filepath.Join(dir, "out")
	if err := ExtractArchive(archive, dest); err != nil {
		t.Fatalf("ExtractArchive() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "src", "App.tsx"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(data) != "export default function App() {}\n" {
		t.Errorf("extracted content = %q", data)
	}
}

func TestExtractArchiveTarGz(t *testing.T) {
	for _, suffix := range []string{".tar.gz", ".tgz"} {
		t.Run(suffix, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, "template"+suffix)
			makeTarGz(t, archive, map[string]string{
				"package.json":    `{"name":"app"}`,
				"src/index.html":  "<html></html>",
				"src/css/app.css": "body {}",
			})

			dest := filepath.Join(dir, "out")
			if err := ExtractArchive(archive, dest); err != nil {
				t.Fatalf("ExtractArchive() error: %v", err)
			}

			data, err := os.ReadFile(filepath.Join(dest, "src", "css", "app.css"))
			if err != nil {
				t.Fatalf("read extracted file: %v", err)
			}
			if string(data) != "body {}" {
				t.Errorf("extracted content = %q", data)
			}
		})
	}
}

func TestExtractArchiveUnsupported(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "template.rar")
	if err := os.WriteFile(archive, []byte("not an archive"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	dest := filepath.Join(dir, "out")
	err := ExtractArchive(archive, dest)
	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Fatalf("ExtractArchive() error = %v, want ErrUnsupportedArchive", err)
	}

	// The destination is still created so callers can treat the miss as a
	// no-op.
	info, statErr := os.Stat(dest)
	if statErr != nil || !info.IsDir() {
		t.Errorf("destination %q missing after unsupported archive: %v", dest, statErr)
	}
}

func TestExtractArchiveCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		archive string
	}{
		{name: "corrupt zip", archive: "bad.zip"},
		{name: "corrupt tarball", archive: "bad.tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, tt.archive)
			if err := os.WriteFile(archive, []byte("garbage bytes"), 0o644); err != nil {
				t.Fatalf("write archive: %v", err)
			}
			err := ExtractArchive(archive, filepath.Join(dir, "out"))
			if !errors.Is(err, ErrExtractionFailed) {
				t.Fatalf("ExtractArchive() error = %v, want ErrExtractionFailed", err)
			}
		})
	}
}

func TestExtractArchiveMissingFile(t *testing.T) {
	dir := t.TempDir()
	err := ExtractArchive(filepath.Join(dir, "absent.tar.gz"), filepath.Join(dir, "out"))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("ExtractArchive() error = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractArchiveRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	makeTarGz(t, archive, map[string]string{
		"../evil.txt": "pwned",
	})

	dest := filepath.Join(dir, "out")
	err := ExtractArchive(archive, dest)
	if !errors.Is(err, ErrPathForbidden) {
		t.Fatalf("ExtractArchive() error = %v, want ErrPathForbidden", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "evil.txt")); !os.IsNotExist(statErr) {
		t.Errorf("escaping entry was written outside the destination")
	}
}

func TestExtractArchiveRoundTrip(t *testing.T) {
	// The same file tree packed as a tarball and as a zip extracts to
	// identical manifests.
	entries := map[string]string{
		"package.json":              `{"name":"app"}`,
		"index.html":                "<html></html>",
		"src/App.tsx":               "export default function App() {}\n",
		"src/components/Button.tsx": "export const Button = () => null\n",
		"public/favicon.ico":        "icon",
	}
	dir := t.TempDir()
	tarball := filepath.Join(dir, "template.tar.gz")
	makeTarGz(t, tarball, entries)
	zipfile := filepath.Join(dir, "template.zip")
	makeZip(t, zipfile, entries)

	tarDest := filepath.Join(dir, "out-tar")
	if err := ExtractArchive(tarball, tarDest); err != nil {
		t.Fatalf("ExtractArchive(tar.gz) error: %v", err)
	}
	zipDest := filepath.Join(dir, "out-zip")
	if err := ExtractArchive(zipfile, zipDest); err != nil {
		t.Fatalf("ExtractArchive(zip) error: %v", err)
	}

	fromTar, err := ListFiles(ProjectRoot(tarDest), "")
	if err != nil {
		t.Fatalf("ListFiles(tar dest) error: %v", err)
	}
	fromZip, err := ListFiles(ProjectRoot(zipDest), "")
	if err != nil {
		t.Fatalf("ListFiles(zip dest) error: %v", err)
	}

	var want []string
	for name := range entries {
		want = append(want, name)
	}
	sort.Strings(want)
	if !reflect.DeepEqual(fromTar, want) {
		t.Errorf("tarball manifest = %v, want %v", fromTar, want)
	}
	if !reflect.DeepEqual(fromZip, fromTar) {
		t.Errorf("zip manifest = %v, want tarball manifest %v", fromZip, fromTar)
	}
}

package templates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	gh "github.com/google/go-github/v66/github"
)

// newTemplateClient returns a go-github client pointed at a local httptest
// server. The server is closed when the test finishes.
func newTemplateClient(t *testing.T, handler http.Handler) (*gh.Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := gh.NewClient(srv.Client())
	base, _ := url.Parse(srv.URL + "/")
	client.BaseURL = base
	return client, srv
}

func TestGitHubTemplateDownload(t *testing.T) {
	payload := []byte("tarball-bytes")
	var gotPath string

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/template-repo/tarball/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Location", srv.URL+"/archive/template-repo-main.tar.gz")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/archive/template-repo-main.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})
	client, srv := newTemplateClient(t, mux)

	tpl := NewGitHubTemplateWithClient(client, "owner", "template-repo", "main")

	path, cleanup, err := tpl.Download(context.Background())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if gotPath != "/repos/owner/template-repo/tarball/main" {
		t.Errorf("archive link path = %q, want %q", gotPath, "/repos/owner/template-repo/tarball/main")
	}
	if !strings.HasSuffix(path, ".tar.gz") {
		t.Errorf("Download() path = %q, want a .tar.gz suffix", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading downloaded archive: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("downloaded archive = %q, want %q", data, payload)
	}

	cleanup()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("cleanup left %s behind", path)
	}
}

func TestGitHubTemplateDownloadDefaultRef(t *testing.T) {
	var gotPath string

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/template-repo/tarball", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Location", srv.URL+"/archive.tar.gz")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/archive.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	})
	client, srv := newTemplateClient(t, mux)

	tpl := NewGitHubTemplateWithClient(client, "owner", "template-repo", "")

	_, cleanup, err := tpl.Download(context.Background())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer cleanup()

	if gotPath != "/repos/owner/template-repo/tarball" {
		t.Errorf("archive link path = %q, want %q", gotPath, "/repos/owner/template-repo/tarball")
	}
}

func TestGitHubTemplateDownloadAPIError(t *testing.T) {
	client, _ := newTemplateClient(t, http.NotFoundHandler())

	tpl := NewGitHubTemplateWithClient(client, "owner", "template-repo", "main")

	if _, _, err := tpl.Download(context.Background()); err == nil {
		t.Fatal("Download() expected error for missing repository, got nil")
	}
}

func TestGitHubTemplateDownloadBadArchive(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/template-repo/tarball/main", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", srv.URL+"/archive.tar.gz")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/archive.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	})
	client, srv := newTemplateClient(t, mux)

	tpl := NewGitHubTemplateWithClient(client, "owner", "template-repo", "main")

	_, _, err := tpl.Download(context.Background())
	if err == nil {
		t.Fatal("Download() expected error for failed archive fetch, got nil")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("Download() error = %v, want mention of status 500", err)
	}
}

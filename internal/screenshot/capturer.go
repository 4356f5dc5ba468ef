// Package screenshot renders pages in a headless browser.
package screenshot

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/swarnimaj/plugin-react-app-builder/internal/command"
)

// Capturer shells out to a Chromium-compatible browser to save a PNG of a
// page.
type Capturer struct {
	browser string
	dir     string
	exec    command.Runner
	now     func() time.Time
}

// New creates a Capturer that runs browser and writes screenshots under
// dir.
func New(browser, dir string) *Capturer {
	return &Capturer{browser: browser, dir: dir, exec: command.ExecRunner{}, now: time.Now}
}

// NewWithRunner creates a Capturer backed by a custom command runner, used
// by tests.
func NewWithRunner(browser, dir string, exec command.Runner) *Capturer {
	return &Capturer{browser: browser, dir: dir, exec: exec, now: time.Now}
}

// Capture loads url headlessly and saves a screenshot named by capture
// time, returning the path of the written file.
func (c *Capturer) Capture(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot directory: %w", err)
	}
	path := filepath.Join(c.dir, fmt.Sprintf("screenshot_%d.png", c.now().Unix()))

	args := []string{"--headless", "--disable-gpu", "--screenshot=" + path, url}
	_, stderr, err := c.exec.Run(ctx, "", c.browser, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return "", fmt.Errorf("take screenshot of %s: %v: %s", url, err, msg)
		}
		return "", fmt.Errorf("take screenshot of %s: %w", url, err)
	}

	log.Printf("Screenshot taken and saved to '%s'.", path)
	return path, nil
}

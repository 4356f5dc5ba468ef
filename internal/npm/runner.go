// Package npm shells out to the npm CLI inside project directories.
package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/swarnimaj/plugin-react-app-builder/internal/command"
)

// Runner executes npm subcommands. Commands run with an argument vector,
// never through a shell, so package names cannot smuggle shell syntax.
type Runner struct {
	exec command.Runner
}

func New() *Runner {
	return &Runner{exec: command.ExecRunner{}}
}

// NewWithRunner creates a Runner backed by a custom command runner, used
// by tests.
func NewWithRunner(exec command.Runner) *Runner {
	return &Runner{exec: exec}
}

// Install adds a package to the project in dir, optionally pinned to a
// version.
func (r *Runner) Install(ctx context.Context, dir, pkg, version string) error {
	spec := pkg
	if version != "" {
		spec = pkg + "@" + version
	}
	return r.runQuiet(ctx, dir, "install", spec)
}

// Uninstall removes a package from the project in dir.
func (r *Runner) Uninstall(ctx context.Context, dir, pkg string) error {
	return r.runQuiet(ctx, dir, "uninstall", pkg)
}

// Search queries the registry and returns the raw JSON result list.
func (r *Runner) Search(ctx context.Context, dir, query string) (json.RawMessage, error) {
	stdout, stderr, err := r.exec.Run(ctx, dir, "npm", "search", query, "--json")
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = strings.TrimSpace(string(stdout))
		}
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.New(msg)
	}
	if !json.Valid(stdout) {
		return nil, errors.New("npm search returned invalid JSON")
	}
	return json.RawMessage(stdout), nil
}

// RunScript runs an npm script such as "build" or "lint" and returns its
// captured output alongside the exit error, letting callers decide how a
// nonzero exit is surfaced.
func (r *Runner) RunScript(ctx context.Context, dir, script string) (stdout, stderr string, err error) {
	so, se, err := r.exec.Run(ctx, dir, "npm", "run", script)
	return string(so), string(se), err
}

func (r *Runner) runQuiet(ctx context.Context, dir string, args ...string) error {
	stdout, stderr, err := r.exec.Run(ctx, dir, "npm", args...)
	if err != nil {
		if len(stdout) == 0 && len(stderr) == 0 {
			return fmt.Errorf("npm %s: %w", args[0], err)
		}
		return fmt.Errorf("STDOUT:\n%s\nSTDERR:\n%s", stdout, stderr)
	}
	return nil
}

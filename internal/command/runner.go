// Package command abstracts subprocess execution so packages shelling out
// to external tools can be tested without running them.
package command

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner is an interface for executing system commands.
// This abstraction allows us to mock command execution in tests.
type Runner interface {
	// Run executes a command in dir and returns captured stdout and
	// stderr. An empty dir runs the command in the process working
	// directory.
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner is the production implementation using os/exec.
type ExecRunner struct{}

// Run executes a command with stdout and stderr captured separately.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// MockRunner is a test implementation that returns predefined responses.
type MockRunner struct {
	// RunFunc is called when Run is invoked.
	RunFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error)

	// Calls tracks all command invocations.
	Calls []MockCall
}

// MockCall represents a single command invocation.
type MockCall struct {
	Dir  string
	Name string
	Args []string
}

// Run records the invocation and executes the mock function.
func (m *MockRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	m.Calls = append(m.Calls, MockCall{Dir: dir, Name: name, Args: args})

	if m.RunFunc != nil {
		return m.RunFunc(ctx, dir, name, args...)
	}

	return []byte(""), []byte(""), nil
}

// NewMockRunner creates a new mock with default behavior.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Calls: make([]MockCall, 0),
	}
}

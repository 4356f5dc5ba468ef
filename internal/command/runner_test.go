package command

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestExecRunner_Run(t *testing.T) {
	runner := ExecRunner{}

	stdout, _, err := runner.Run(context.Background(), "", "echo", "hello")
	if err != nil {
		t.Errorf("Run() unexpected error: %v", err)
	}
	if !strings.Contains(string(stdout), "hello") {
		t.Errorf("Run() stdout = %q, want to contain 'hello'", string(stdout))
	}
}

func TestExecRunner_RunInDir(t *testing.T) {
	runner := ExecRunner{}

	stdout, _, err := runner.Run(context.Background(), "/tmp", "pwd")
	if err != nil {
		t.Errorf("Run() unexpected error: %v", err)
	}
	if len(stdout) == 0 {
		t.Error("Run() returned empty stdout")
	}
}

func TestExecRunner_RunError(t *testing.T) {
	runner := ExecRunner{}

	_, _, err := runner.Run(context.Background(), "", "nonexistent-command-xyz")
	if err == nil {
		t.Error("Run() should return error for nonexistent command")
	}
}

func TestMockRunner_Run(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(*MockRunner)
		dir        string
		command    string
		args       []string
		wantStdout string
		wantStderr string
		wantErr    bool
	}{
		{
			name: "default behavior (no func set)",
			setupMock: func(m *MockRunner) {
				// No setup, use default behavior
			},
			dir:        "/tmp",
			command:    "test",
			args:       []string{"arg1", "arg2"},
			wantStdout: "",
			wantStderr: "",
			wantErr:    false,
		},
		{
			name: "custom function returns output",
			setupMock: func(m *MockRunner) {
				m.RunFunc = func(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
					return []byte(fmt.Sprintf("executed in %s", dir)), nil, nil
				}
			},
			dir:        "/custom/dir",
			command:    "test",
			args:       []string{},
			wantStdout: "executed in /custom/dir",
			wantStderr: "",
			wantErr:    false,
		},
		{
			name: "custom function returns error with stderr",
			setupMock: func(m *MockRunner) {
				m.RunFunc = func(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
					return nil, []byte("boom"), fmt.Errorf("command failed")
				}
			},
			dir:        "",
			command:    "test",
			args:       []string{"arg1"},
			wantStdout: "",
			wantStderr: "boom",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockRunner()
			tt.setupMock(mock)

			stdout, stderr, err := mock.Run(context.Background(), tt.dir, tt.command, tt.args...)

			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(stdout) != tt.wantStdout {
				t.Errorf("Run() stdout = %q, want %q", string(stdout), tt.wantStdout)
			}
			if string(stderr) != tt.wantStderr {
				t.Errorf("Run() stderr = %q, want %q", string(stderr), tt.wantStderr)
			}

			if len(mock.Calls) != 1 {
				t.Fatalf("Expected 1 call, got %d", len(mock.Calls))
			}
			call := mock.Calls[0]
			if call.Dir != tt.dir {
				t.Errorf("Call dir = %s, want %s", call.Dir, tt.dir)
			}
			if call.Name != tt.command {
				t.Errorf("Call name = %s, want %s", call.Name, tt.command)
			}
			if len(call.Args) != len(tt.args) {
				t.Errorf("Call args length = %d, want %d", len(call.Args), len(tt.args))
			}
		})
	}
}

func TestMockRunner_CallTracking(t *testing.T) {
	mock := NewMockRunner()

	mock.Run(context.Background(), "", "cmd1", "arg1")
	mock.Run(context.Background(), "/dir1", "cmd2", "arg2", "arg3")
	mock.Run(context.Background(), "", "cmd3")

	if len(mock.Calls) != 3 {
		t.Fatalf("Expected 3 calls, got %d", len(mock.Calls))
	}
	if mock.Calls[0].Name != "cmd1" {
		t.Errorf("Call[0] name = %s, want cmd1", mock.Calls[0].Name)
	}
	if mock.Calls[1].Dir != "/dir1" {
		t.Errorf("Call[1] dir = %s, want /dir1", mock.Calls[1].Dir)
	}
	if len(mock.Calls[1].Args) != 2 {
		t.Errorf("Call[1] args length = %d, want 2", len(mock.Calls[1].Args))
	}
	if len(mock.Calls[2].Args) != 0 {
		t.Errorf("Call[2] args length = %d, want 0", len(mock.Calls[2].Args))
	}
}

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("calculator.preset", "unknown preset")

	expected := "config error in calculator.preset: unknown preset"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if errors.Unwrap(err) != nil {
		t.Error("Unwrap() should be nil without a cause")
	}
}

func TestWrapConfigError(t *testing.T) {
	cause := errors.New("file not found")
	err := WrapConfigError("catalog.path", "cannot load catalog", cause)

	expected := "config error in catalog.path: cannot load catalog: file not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("serve", underlyingErr)

	expected := "command serve failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"command", NewCommandError("serve", errors.New("boom")), ExitFailure},
		{"config", NewConfigError("format", "bad"), ExitConfig},
		{"wrapped config", NewCommandError("estimate", NewConfigError("plan", "unknown")), ExitConfig},
		{"fmt wrapped config", fmt.Errorf("run: %w", NewConfigError("plan", "unknown")), ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

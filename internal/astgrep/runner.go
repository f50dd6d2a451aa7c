package astgrep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes the structural search tool with the given arguments and
// returns its standard output.
type Runner interface {
	Run(ctx context.Context, args []string) ([]byte, error)
}

// RunError is returned when the tool exits non-zero.
type RunError struct {
	ExitCode int
	Stderr   string
}

func (e *RunError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ast-grep exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("ast-grep exited with status %d: %s", e.ExitCode, e.Stderr)
}

// ExecRunner runs a local ast-grep binary.
type ExecRunner struct {
	Binary string
}

func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = "sg"
	}
	return &ExecRunner{Binary: binary}
}

func (r *ExecRunner) Run(ctx context.Context, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &RunError{ExitCode: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return nil, fmt.Errorf("run %s: %w", r.Binary, err)
	}
	return stdout.Bytes(), nil
}

// Args builds the `sg run` argument list for one file.
func Args(pattern, language, path string) []string {
	return []string{"run", "--json", "--pattern", pattern, "-l", language, path}
}

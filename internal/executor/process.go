package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/jmylchreest/stylegen/pkg/plugin"
)

// detectTimeout bounds the engine metadata query.
const detectTimeout = 5 * time.Second

// ProcessRunner defines an interface for running external processes.
// This abstraction allows for dependency injection and easier testing.
type ProcessRunner interface {
	// Run executes a command with the given context, arguments, stdin, and returns stdout/stderr.
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// RealProcessRunner implements ProcessRunner using actual os/exec commands.
type RealProcessRunner struct{}

// NewRealProcessRunner creates a new real process runner.
func NewRealProcessRunner() *RealProcessRunner {
	return &RealProcessRunner{}
}

// Run executes a real external process.
func (r *RealProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdin

	stdout, err := cmd.Output()
	if err != nil {
		exitErr := &exec.ExitError{}
		if errors.As(err, &exitErr) {
			return stdout, exitErr.Stderr, err
		}
		return stdout, nil, err
	}
	return stdout, nil, nil
}

// engineArgs builds the engine subcommand line.
func engineArgs(mode string, args []string) []string {
	out := []string{"engine"}
	if mode != "" {
		out = append(out, mode)
	}
	return append(out, args...)
}

// Detect asks an engine executable for its metadata via "engine --info".
func Detect(ctx context.Context, runner ProcessRunner, path string, args []string) (plugin.PluginInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	stdout, stderr, err := runner.Run(ctx, path, engineArgs("--info", args), nil)
	if err != nil {
		if len(stderr) > 0 {
			return plugin.PluginInfo{}, fmt.Errorf("failed to query engine: %w: %s", err, stderr)
		}
		return plugin.PluginInfo{}, fmt.Errorf("failed to query engine: %w", err)
	}

	var info plugin.PluginInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return plugin.PluginInfo{}, fmt.Errorf("failed to parse engine info: %w", err)
	}
	if info.ProtocolVersion == "" {
		return plugin.PluginInfo{}, fmt.Errorf("engine info has no protocol version")
	}
	return info, nil
}

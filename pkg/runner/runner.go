// Package runner executes external commands. Everything winify asks of the
// desktop (version query, process lookup, extension listing) goes through
// the Runner interface so tests can substitute canned output.
package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/rs/zerolog"
)

// Options tunes a single command execution
type Options struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// Result holds captured command output
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Lines splits stdout into trimmed, non-empty lines
func (r Result) Lines() []string {
	var lines []string
	for _, line := range strings.Split(string(r.Stdout), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Runner runs a command and captures its output
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts Options) (Result, error)
}

// CmdRunner runs commands with os/exec
type CmdRunner struct {
	Logger zerolog.Logger
}

// New returns a CmdRunner logging through the "runner" component
func New() *CmdRunner {
	return &CmdRunner{Logger: logging.GetLogger("runner")}
}

// Run executes command. A non-zero exit is returned as an ErrCommand error
// alongside the captured output.
func (r *CmdRunner) Run(ctx context.Context, command string, args []string, opts Options) (Result, error) {
	logging.LogCommand(r.Logger, command, args)

	cmd := exec.CommandContext(ctx, command, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdoutBuf, stderrBuf bytes.Buffer

	stdoutWriter := io.Writer(&stdoutBuf)
	if opts.Stdout != nil {
		stdoutWriter = io.MultiWriter(&stdoutBuf, opts.Stdout)
	}
	stderrWriter := io.Writer(&stderrBuf)
	if opts.Stderr != nil {
		stderrWriter = io.MultiWriter(&stderrBuf, opts.Stderr)
	}

	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter

	err := cmd.Run()
	result := Result{Stdout: stdoutBuf.Bytes(), Stderr: stderrBuf.Bytes()}
	if err != nil {
		result.ExitCode = -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		}
		r.Logger.Debug().
			Str("command", command).
			Int("exit_code", result.ExitCode).
			Str("stderr", strings.TrimSpace(stderrBuf.String())).
			Msg("Command failed")
		return result, errors.Wrapf(err, errors.ErrCommand, "%s %s", command, strings.Join(args, " ")).
			WithDetail("exit_code", result.ExitCode)
	}

	return result, nil
}

var _ Runner = (*CmdRunner)(nil)

package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/runner"
)

// Response is a canned command result
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// FakeRunner answers commands from a table keyed by the full command line
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []string
}

// NewFakeRunner creates an empty FakeRunner. Unknown commands fail with
// exit code 127.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string][]Response)}
}

// On queues responses for a command line such as "gnome-shell --version".
// Responses are consumed in order; the last one repeats.
func (f *FakeRunner) On(commandLine string, responses ...Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[commandLine] = append(f.responses[commandLine], responses...)
	return f
}

// Run implements runner.Runner
func (f *FakeRunner) Run(_ context.Context, command string, args []string, _ runner.Options) (runner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	line := strings.TrimSpace(command + " " + strings.Join(args, " "))
	f.calls = append(f.calls, line)

	queue, ok := f.responses[line]
	if !ok || len(queue) == 0 {
		return runner.Result{ExitCode: 127}, errors.Newf(errors.ErrCommand, "unexpected command %q", line)
	}

	resp := queue[0]
	if len(queue) > 1 {
		f.responses[line] = queue[1:]
	}

	result := runner.Result{
		Stdout:   []byte(resp.Stdout),
		Stderr:   []byte(resp.Stderr),
		ExitCode: resp.ExitCode,
	}
	if resp.Err != nil {
		return result, resp.Err
	}
	if resp.ExitCode != 0 {
		return result, errors.Newf(errors.ErrCommand, "%s exited with %d", line, resp.ExitCode).
			WithDetail("exit_code", resp.ExitCode)
	}
	return result, nil
}

// Calls returns the command lines run so far
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts invocations of a command line
func (f *FakeRunner) CallCount(commandLine string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == commandLine {
			n++
		}
	}
	return n
}

var _ runner.Runner = (*FakeRunner)(nil)

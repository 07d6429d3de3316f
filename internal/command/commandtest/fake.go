// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shinji-kodama/mergepom/internal/command"
)

// Fake is a command.Runner that answers from canned responses and records
// every invocation.
type Fake struct {
	mu        sync.Mutex
	responses map[string]func(argv []string) (command.Result, error)
	calls     [][]string
}

// NewFake creates an empty Fake. Unscripted commands fail with an error.
func NewFake() *Fake {
	return &Fake{responses: make(map[string]func([]string) (command.Result, error))}
}

// key identifies a command by its arguments after the binary name, so
// tests do not depend on the configured git path.
func key(args []string) string {
	return strings.Join(args, " ")
}

// On scripts a fixed stdout and exit code for a command line given
// without the binary, e.g. On("rev-parse --abbrev-ref HEAD", "main\n", 0).
func (f *Fake) On(cmdline, stdout string, exitCode int) *Fake {
	return f.Handle(cmdline, func([]string) (command.Result, error) {
		return command.Result{Stdout: []byte(stdout), ExitCode: exitCode}, nil
	})
}

// Handle scripts a callback for a command line. The callback receives the
// full argv and runs at call time, so it can inspect files on disk.
func (f *Fake) Handle(cmdline string, fn func(argv []string) (command.Result, error)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[cmdline] = fn
	return f
}

// Run implements command.Runner.
func (f *Fake) Run(_ context.Context, argv []string) (command.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), argv...))
	var fn func([]string) (command.Result, error)
	if len(argv) > 0 {
		fn = f.responses[key(argv[1:])]
	}
	f.mu.Unlock()

	if fn == nil {
		return command.Result{}, fmt.Errorf("unexpected command: %s", strings.Join(argv, " "))
	}
	return fn(argv)
}

// Calls returns every argv passed to Run, in order.
func (f *Fake) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

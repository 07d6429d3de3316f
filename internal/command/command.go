// Package command runs external programs for the merge driver.
//
// Every external collaborator (git merge-file, git rev-parse, git config)
// is reached through the Runner interface so the orchestration logic can
// be exercised with canned outputs instead of a live repository.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Result is the outcome of one external command.
type Result struct {
	// Stdout is everything the command wrote to standard output.
	Stdout []byte

	// ExitCode is the process exit status.
	ExitCode int
}

// Runner runs an external command and waits for it to finish.
//
// A non-zero exit status is reported in Result, not as an error: for
// git merge-file it is the expected signal that conflicts remain. An error
// means the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, argv []string) (Result, error)
}

// Exec is the os/exec backed Runner.
type Exec struct {
	// Dir is the working directory of the child. Empty means the current
	// directory, which is where git runs merge drivers (the worktree root).
	Dir string

	// Stderr receives the child's standard error. Nil discards it.
	Stderr io.Writer
}

// Run executes argv[0] with the remaining elements as arguments.
func (e *Exec) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("empty command")
	}

	// #nosec G204 -- argv is assembled by the driver from fixed git subcommands
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.Dir

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if e.Stderr != nil {
		cmd.Stderr = e.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return Result{Stdout: stdout.Bytes()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{Stdout: stdout.Bytes(), ExitCode: exitErr.ExitCode()}, nil
	}
	return Result{}, fmt.Errorf("failed to run %s: %w", strings.Join(argv, " "), err)
}

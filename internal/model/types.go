package model

import (
	"fmt"
)

// Version is the project version token tracked by the merge driver.
//
// It is opaque: no structure is parsed or validated. Two versions are only
// ever compared for equality, and a version is only ever used as a literal
// search/replace key. The zero value NoVersion means the descriptor did not
// carry the tracked element.
type Version string

// NoVersion is returned when a descriptor does not carry a version.
const NoVersion Version = ""

// Present reports whether a version was extracted.
func (v Version) Present() bool {
	return v != NoVersion
}

// String returns the raw version token.
func (v Version) String() string {
	return string(v)
}

// Display returns the version for human-readable output, using "None"
// for an absent version (the spelling existing log parsers expect).
func (v Version) Display() string {
	if !v.Present() {
		return "None"
	}
	return string(v)
}

// Versions groups the three versions extracted at the start of a merge.
type Versions struct {
	// Ancestor is the version of the common base descriptor.
	Ancestor Version

	// Ours is the version of the current branch's descriptor.
	Ours Version

	// Theirs is the version of the incoming branch's descriptor.
	Theirs Version
}

// FileContent is the full decoded text of a descriptor paired with the
// character encoding used to decode it. Writes always replace the whole
// file, so there is no notion of a partial update.
type FileContent struct {
	Text     string
	Encoding string
}

// MergeResult holds the outcome of the external three-way merge.
type MergeResult struct {
	// Output is the raw stdout of the merge utility (merged text, possibly
	// with conflict markers).
	Output []byte

	// ExitCode is the merge utility's exit status. Zero means a clean
	// merge, a positive value is the number of conflicts. It becomes the
	// merge driver's own exit status.
	ExitCode int
}

// HasConflicts reports whether the merge left conflict markers behind.
func (r MergeResult) HasConflicts() bool {
	return r.ExitCode > 0
}

// RepoState captures the two repository facts that decide whether the
// merged version is reset to ours after the merge.
type RepoState struct {
	// Branch is the short name of the checked-out branch ("HEAD" when
	// detached).
	Branch string

	// KeepTrunkVersion is the boolean repository config flag that forces
	// the restore even on the trunk branch. Absent means false.
	KeepTrunkVersion bool
}

// ExitCode defines the process exit codes of the merge driver.
type ExitCode int

const (
	// ExitSuccess indicates a clean merge or a successful helper command.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unrecoverable failure (for example the
	// branch query failed or the output could not be encoded).
	ExitGeneralError ExitCode = 1

	// ExitWrongArguments is returned when the driver receives a number of
	// positional arguments other than 3 or 4. It is the unsigned form of
	// the legacy -1 status.
	ExitWrongArguments ExitCode = 255
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
//
// A CLIError with an empty Message is silent: the CLI exits with Code
// without printing anything. This is how the merge utility's exit status
// is propagated, since a conflicted merge is an expected outcome and not
// an error to report.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Message == "" && e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// Silent reports whether the error should be turned into an exit code
// without printing a message.
func (e *CLIError) Silent() bool {
	return e.Message == "" && e.Err == nil
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ExitStatus creates a silent CLIError that only carries an exit code.
func ExitStatus(code int) *CLIError {
	return &CLIError{Code: ExitCode(code)}
}

// Package model defines the domain types and value objects for the
// mergepom merge driver.
//
// Every entity here is transient and lives only for the duration of one
// merge driver invocation: nothing is cached or persisted between runs.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model

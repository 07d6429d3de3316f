// Package cli implements the cobra-based command line of mergepom.
//
// The root command is the merge driver itself, invoked by git as
//
//	mergepom %O %A %B %L
//
// Helper subcommands (show-version, install) are defined in their own
// files within this package.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/mergepom/internal/command"
	"github.com/shinji-kodama/mergepom/internal/config"
	"github.com/shinji-kodama/mergepom/internal/logging"
	"github.com/shinji-kodama/mergepom/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// configPath is an explicit config file. When empty, .mergepom.yaml,
	// .mergepom.yml and .mergepom.json are looked up in the working
	// directory.
	configPath string

	// stdoutLog and stderrLog override the redirect targets of the two
	// output streams. "-" keeps the process stream.
	stdoutLog string
	stderrLog string

	// trunkBranch overrides the branch on which the merged version is kept.
	trunkBranch string

	// verbose enables debug logging.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// newRunner builds the runner for external commands. Tests replace it
// with a scripted fake.
var newRunner = func(stderr io.Writer) command.Runner {
	return &command.Exec{Stderr: stderr}
}

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mergepom <ancestor> <ours> <theirs> [marker-size]",
		Short: "git merge driver that resolves Maven pom.xml version conflicts",
		Long: `mergepom is a git merge driver for Maven pom.xml files.

When both branches changed the project version property, the ours file
is rewritten to theirs' version before the textual merge so the version
line does not conflict. After the merge, ours' version is restored unless
the current branch is the trunk branch (or merge.pommerge.keepmasterversion
is set, which restores it everywhere).

Register it with:
  mergepom install --attributes`,

		// The merge driver validates its own argument count so it can
		// reproduce the legacy message and exit status.
		Args: cobra.ArbitraryArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		// A conflicted merge returns an error carrying the exit code, which
		// must not be decorated with usage text.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Run formats them itself.
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .mergepom.{yaml,yml,json} in the working directory)")
	rootCmd.PersistentFlags().StringVar(&stdoutLog, "stdout-log", "", `File receiving standard output ("-" for the terminal)`)
	rootCmd.PersistentFlags().StringVar(&stderrLog, "stderr-log", "", `File receiving standard error ("-" for the terminal)`)
	rootCmd.PersistentFlags().StringVar(&trunkBranch, "trunk-branch", "", "Branch on which the merged-in version is kept")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewShowVersionCommand())
	rootCmd.AddCommand(NewInstallCommand())

	return rootCmd
}

// Execute runs the root command and exits the process with the resulting
// code. This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	os.Exit(Run(rootCmd))
}

// Run executes the command and translates its error into an exit code.
// CLIError types carry their own exit codes; other errors map to 1.
func Run(rootCmd *cobra.Command) int {
	err := rootCmd.Execute()
	if err == nil {
		return int(model.ExitSuccess)
	}

	// A plain type assertion is enough: commands return CLIErrors
	// unwrapped.
	if cliErr, ok := err.(*model.CLIError); ok {
		if !cliErr.Silent() {
			printError(rootCmd.ErrOrStderr(), cliErr.Message, cliErr.Err)
		}
		return int(cliErr.Code)
	}

	printError(rootCmd.ErrOrStderr(), err.Error(), nil)
	return int(model.ExitGeneralError)
}

// printError writes "Error: <message>" to w.
func printError(w io.Writer, message string, underlying error) {
	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", message)
}

// loadConfig resolves the config file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Resolve(configPath, ".")
	if err != nil {
		return cfg, model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("stdout-log") {
		cfg.Log.Stdout = stdoutLog
	}
	if flags.Changed("stderr-log") {
		cfg.Log.Stderr = stderrLog
	}
	if flags.Changed("trunk-branch") {
		cfg.TrunkBranch = trunkBranch
	}

	if err := cfg.Err(); err != nil {
		return cfg, model.WrapCLIError(model.ExitGeneralError, "invalid configuration", err)
	}
	return cfg, nil
}

// openSinks opens the configured output streams. The legacy default paths
// are optional: on machines without their directory the terminal is used.
func openSinks(cmd *cobra.Command, cfg config.Config) (*logging.Sinks, error) {
	sinks, err := logging.Open(logging.Options{
		StdoutPath: cfg.Log.Stdout,
		StderrPath: cfg.Log.Stderr,
		Verbose:    verbose,
		Optional:   []string{config.DefaultStdoutLog, config.DefaultStderrLog},
	}, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to open log files", err)
	}
	return sinks, nil
}

// VerboseLog prints a message to the command's stderr only when verbose
// mode is enabled.
func VerboseLog(cmd *cobra.Command, format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[verbose] "+format+"\n", args...)
	}
}

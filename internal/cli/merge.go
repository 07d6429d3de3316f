package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinji-kodama/mergepom/internal/driver"
	"github.com/shinji-kodama/mergepom/internal/gitrepo"
	"github.com/shinji-kodama/mergepom/internal/model"
	"github.com/shinji-kodama/mergepom/internal/pom"
)

// wrongArgs is printed when the positional argument count is invalid.
const wrongArgs = "Wrong number of arguments."

// runMerge is the merge driver entry point.
//
// With exactly one argument it prints that descriptor's version and then
// still fails the argument-count check (status 255). This compound
// behaviour is kept for compatibility with existing wrappers; the
// show-version subcommand is the clean way to query a version.
func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect output before doing anything else.
	sinks, err := openSinks(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sinks.Close() }()

	if len(args) == 1 {
		v := pom.Lookup(args[0], cfg.PomOptions(), sinks.Logger)
		fmt.Fprintln(sinks.Out, v.Display())
	}

	if len(args) < 3 || len(args) > 4 {
		fmt.Fprintln(sinks.Out, wrongArgs)
		return model.ExitStatus(int(model.ExitWrongArguments))
	}

	// args[3] is the conflict marker size (%L); merge-file uses its default.
	paths := driver.Paths{Ancestor: args[0], Ours: args[1], Theirs: args[2]}

	repo := gitrepo.New(newRunner(sinks.Err), cfg.GitBinary)
	d := driver.New(cfg, repo, sinks.Logger)

	code, err := d.Merge(cmd.Context(), paths)
	if err != nil {
		sinks.Logger.Error("merge failed", zap.String("ours", paths.Ours), zap.Error(err))
		if cliErr, ok := err.(*model.CLIError); ok {
			return cliErr
		}
		return model.WrapCLIError(model.ExitGeneralError, "merge failed", err)
	}

	if code != int(model.ExitSuccess) {
		return model.ExitStatus(code)
	}
	return nil
}

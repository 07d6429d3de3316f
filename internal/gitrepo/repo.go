package gitrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinji-kodama/mergepom/internal/command"
	"github.com/shinji-kodama/mergepom/internal/model"
)

// Merge labels passed to git merge-file. They appear in conflict markers
// and are fixed so that conflict output is stable across repositories.
const (
	LabelOurs   = "mine"
	LabelBase   = "base"
	LabelTheirs = "theirs"
)

// Repo runs git commands against the repository of the working directory.
type Repo struct {
	runner command.Runner
	git    string
}

// New creates a Repo that invokes the given git binary through runner.
// An empty gitBinary means "git" from PATH.
func New(runner command.Runner, gitBinary string) *Repo {
	if gitBinary == "" {
		gitBinary = "git"
	}
	return &Repo{runner: runner, git: gitBinary}
}

// MergeFile performs a three-way text merge of ours, base and theirs and
// returns the merged text from stdout.
//
// The merged result is printed (-p) rather than written over ours, since
// the driver still has to post-process it. A non-zero exit code is not an
// error: a positive value is the number of conflicts left in the output.
// An error is returned only if git could not be run.
func (r *Repo) MergeFile(ctx context.Context, ours, base, theirs string) (model.MergeResult, error) {
	res, err := r.run(ctx, "merge-file", "-p",
		"-L", LabelOurs, "-L", LabelBase, "-L", LabelTheirs,
		ours, base, theirs)
	if err != nil {
		return model.MergeResult{}, err
	}
	return model.MergeResult{Output: res.Stdout, ExitCode: res.ExitCode}, nil
}

// CurrentBranch returns the short name of the checked-out branch.
//
// Uses `git rev-parse --abbrev-ref HEAD`, which returns "HEAD" when the
// repository is in a detached HEAD state. A failing query is fatal for the
// merge driver and is returned as a CLIError.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	res, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("git rev-parse --abbrev-ref HEAD failed with exit code %d", res.ExitCode))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// ConfigBool reads a boolean configuration key.
//
// `git config --get --bool` normalises yes/on/1 to "true". An unset key
// makes git exit with status 1, and any non-zero exit is treated as false
// regardless of what was printed.
func (r *Repo) ConfigBool(ctx context.Context, key string) (bool, error) {
	res, err := r.run(ctx, "config", "--get", "--bool", key)
	if err != nil {
		return false, err
	}
	if res.ExitCode != 0 {
		return false, nil
	}
	return strings.TrimSpace(string(res.Stdout)) == "true", nil
}

// State runs both repository queries used after the merge.
func (r *Repo) State(ctx context.Context, keepKey string) (model.RepoState, error) {
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		return model.RepoState{}, err
	}
	keep, err := r.ConfigBool(ctx, keepKey)
	if err != nil {
		return model.RepoState{}, err
	}
	return model.RepoState{Branch: branch, KeepTrunkVersion: keep}, nil
}

// SetConfig writes a configuration value. When global is true the value
// goes to the user's global configuration instead of the repository's.
func (r *Repo) SetConfig(ctx context.Context, key, value string, global bool) error {
	args := []string{"config"}
	if global {
		args = append(args, "--global")
	}
	args = append(args, key, value)

	res, err := r.run(ctx, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("git config %s failed with exit code %d", key, res.ExitCode))
	}
	return nil
}

// TopLevel returns the root of the working tree, used to locate
// .gitattributes.
func (r *Repo) TopLevel(ctx context.Context) (string, error) {
	res, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", model.NewCLIError(model.ExitGeneralError, "not inside a git working tree")
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// run prepends the git binary and executes the command. Start failures
// are wrapped in a CLIError so the CLI reports them with a clear message.
func (r *Repo) run(ctx context.Context, args ...string) (command.Result, error) {
	argv := append([]string{r.git}, args...)

	res, err := r.runner.Run(ctx, argv)
	if err != nil {
		return command.Result{}, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("git %s failed", strings.Join(args, " ")), err)
	}
	return res, nil
}

package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/mergepom/internal/gitrepo"
	"github.com/shinji-kodama/mergepom/internal/model"
)

// DefaultDriverCommand is the command line git runs for the driver. %O,
// %A, %B and %L are expanded by git to the ancestor, ours and theirs
// temporary files and the conflict marker size.
const DefaultDriverCommand = "mergepom %O %A %B %L"

// installOptions holds the flags of the install command.
type installOptions struct {
	global           bool
	attributes       bool
	keepTrunkVersion bool
	driverCommand    string
	pattern          string
}

// NewInstallCommand creates the "install" command, which registers the
// merge driver with git.
func NewInstallCommand() *cobra.Command {
	opts := &installOptions{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Register mergepom as a git merge driver",
		Long: `Register mergepom as a git merge driver.

Writes merge.<driver>.name and merge.<driver>.driver to the repository's
git config (or the global config with --global). With --attributes, the
line "pom.xml merge=<driver>" is added to the .gitattributes file at the
root of the working tree if it is not already there.

Examples:
  mergepom install --attributes
  mergepom install --global --keep-trunk-version`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.global, "global", false, "Write to the global git config")
	cmd.Flags().BoolVar(&opts.attributes, "attributes", false, "Add the driver to .gitattributes")
	cmd.Flags().BoolVar(&opts.keepTrunkVersion, "keep-trunk-version", false, "Restore ours version on the trunk branch too")
	cmd.Flags().StringVar(&opts.driverCommand, "driver-command", DefaultDriverCommand, "Command line git runs for the driver")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "pom.xml", "gitattributes pattern the driver applies to")

	return cmd
}

// runInstall writes the git config entries and, optionally, the
// gitattributes line.
func runInstall(cmd *cobra.Command, opts *installOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	repo := gitrepo.New(newRunner(cmd.ErrOrStderr()), cfg.GitBinary)
	prefix := "merge." + cfg.DriverName

	entries := [][2]string{
		{prefix + ".name", "Maven pom.xml version merge driver"},
		{prefix + ".driver", opts.driverCommand},
	}
	if opts.keepTrunkVersion {
		entries = append(entries, [2]string{cfg.KeepTrunkVersionKey(), "true"})
	}

	for _, e := range entries {
		if err := repo.SetConfig(ctx, e[0], e[1], opts.global); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "git config %s %q\n", e[0], e[1])
	}

	if !opts.attributes {
		return nil
	}

	top, err := repo.TopLevel(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(top, ".gitattributes")
	line := opts.pattern + " merge=" + cfg.DriverName
	added, err := ensureLine(path, line)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to update .gitattributes", err)
	}
	if added {
		fmt.Fprintf(cmd.OutOrStdout(), "added %q to %s\n", line, path)
	} else {
		VerboseLog(cmd, "%s already contains %q", path, line)
	}
	return nil
}

// ensureLine appends line to the file at path unless an identical line
// (ignoring surrounding whitespace) is already present. It reports whether
// the file was changed.
func ensureLine(path, line string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == line {
			return false, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}

	var buf bytes.Buffer
	buf.Write(data)
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString(line)
	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return false, err
	}
	return true, nil
}

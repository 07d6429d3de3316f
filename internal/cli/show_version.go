package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/mergepom/internal/model"
	"github.com/shinji-kodama/mergepom/internal/pom"
)

// NewShowVersionCommand creates the "show-version" command, which prints
// the tracked version of one descriptor.
func NewShowVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show-version <pom.xml>",
		Short: "Print the tracked version of a pom.xml",
		Long: `Print the version property the merge driver tracks in the given pom.xml.

Exits with status 1 and explains why when no version can be found (file
missing, malformed XML, or no properties/<version element>).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			v, err := pom.ExtractVersion(args[0], cfg.PomOptions())
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "no version found", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mensylisir/stackpkg/pkg/util"
)

// Version will be set by the build process
var Version = "dev"
var Commit = "none"
var Date = "unknown"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version number of stackpkg",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipSetup,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, util.Banner("stackpkg", Version))
		fmt.Fprintf(out, "Git Commit: %s\n", Commit)
		fmt.Fprintf(out, "Build Date: %s\n", Date)
	},
}

// skipSetup replaces the root pre-run for commands that touch neither the
// host nor the configuration.
func skipSetup(cmd *cobra.Command, args []string) error {
	return nil
}

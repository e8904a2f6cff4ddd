package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var forceUpdate bool

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(isInstalledCmd)
	rootCmd.AddCommand(updateReposCmd)
	updateReposCmd.Flags().BoolVar(&forceUpdate, "force", false, "Refresh even if this run already refreshed")
}

var installCmd = &cobra.Command{
	Use:   "install PKG...",
	Short: "Install packages with the host's package manager",
	Long: `Install refreshes the package repositories once per run when needed and
installs the given packages. A failure that may be transient is retried once
after a forced refresh. Exit status 2 means the package manager reported a
package that cannot be installed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.installer.Install(cmd.Context(), args...); err != nil {
			return err
		}
		if len(args) > 0 && !rt.cfg.Offline {
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", green("installed:"), strings.Join(args, " "))
		}
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall PKG...",
	Short: "Remove packages, ignoring package manager failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return rt.installer.Uninstall(cmd.Context(), args...)
	},
}

var isInstalledCmd = &cobra.Command{
	Use:   "is-installed PKG...",
	Short: "Exit 0 if every package is installed, 1 otherwise",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := rt.installer.IsInstalled(cmd.Context(), args...)
		if err != nil {
			return err
		}
		status := color.New(color.FgGreen).Sprint("installed")
		if !ok {
			status = color.New(color.FgRed).Sprint("not installed")
		}
		rt.log.Debugf("%s: %s", strings.Join(args, " "), status)
		if !ok {
			return errNotInstalled
		}
		return nil
	},
}

var updateReposCmd = &cobra.Command{
	Use:   "update-repos",
	Short: "Refresh package repository metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rt.installer.UpdateRepoIfNeeded(cmd.Context(), forceUpdate)
	},
}

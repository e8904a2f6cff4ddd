package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	serrors "github.com/mensylisir/stackpkg/pkg/errors"
	"github.com/mensylisir/stackpkg/pkg/resolver"
)

type getPackagesOptions struct {
	Files   bool
	Sources bool
	Plugins []string
}

var getPackagesOpts = &getPackagesOptions{}

func init() {
	rootCmd.AddCommand(getPackagesCmd)
	getPackagesCmd.Flags().BoolVar(&getPackagesOpts.Files, "files", false, "Print the manifest files instead of the package names")
	getPackagesCmd.Flags().BoolVar(&getPackagesOpts.Sources, "sources", false, "Print each package with the manifest file and line it came from")
	getPackagesCmd.Flags().StringSliceVar(&getPackagesOpts.Plugins, "plugin", nil, "Resolve the manifests shipped by a plugin directory (repeatable)")
	getPackagesCmd.MarkFlagsMutuallyExclusive("files", "sources")
}

var getPackagesCmd = &cobra.Command{
	Use:   "get-packages SERVICES",
	Short: "Print the packages needed by a comma-separated list of services",
	Example: `  stackpkg get-packages general,n-cpu,q-agt
  stackpkg get-packages general,g-api --files
  stackpkg get-packages c-vol --sources
  stackpkg get-packages ironic --plugin /opt/stack/ironic`,
	// The resolver reports a wrong argument count as an invalid argument.
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := *getPackagesOpts
		opts.Plugins = append(append([]string{}, rt.cfg.PluginDirs...), getPackagesOpts.Plugins...)
		return runGetPackages(cmd.Context(), cmd.OutOrStdout(), rt.resolver, &opts, args)
	},
}

func runGetPackages(ctx context.Context, w io.Writer, res *resolver.Resolver, opts *getPackagesOptions, args []string) error {
	if opts.Files || opts.Sources || len(opts.Plugins) > 0 {
		if len(args) != 1 {
			return serrors.InvalidArgument("cmd.get-packages", "expected exactly one comma-separated service list, got %d arguments", len(args))
		}
	}

	var (
		out []string
		err error
	)
	switch {
	case opts.Files:
		out, err = res.Files(ctx, args[0])
	case len(opts.Plugins) > 0:
		out, err = res.ResolvePlugins(ctx, opts.Plugins, args[0])
	case opts.Sources:
		entries, entErr := res.Entries(ctx, args[0])
		for _, e := range entries {
			out = append(out, fmt.Sprintf("%s\t%s:%d", e.Name, e.Source, e.Line))
		}
		err = entErr
	default:
		out, err = res.Resolve(ctx, args...)
	}
	if err != nil {
		return err
	}
	if len(out) > 0 {
		fmt.Fprintln(w, strings.Join(out, "\n"))
	}
	return nil
}

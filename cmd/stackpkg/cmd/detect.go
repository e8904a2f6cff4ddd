package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/mensylisir/stackpkg/pkg/distro"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
	"github.com/mensylisir/stackpkg/pkg/util"
)

type detectOptions struct {
	Output    string
	NoHeaders bool
}

var detectOpts = &detectOptions{}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringVarP(&detectOpts.Output, "output", "o", "table", "Output format: table, json, yaml or env")
	detectCmd.Flags().BoolVar(&detectOpts.NoHeaders, "no-headers", false, "Omit the table header")
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the detected distribution, package family and distro tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := rt.classifier.Info(cmd.Context())
		if err != nil {
			return err
		}
		return printInfo(cmd.OutOrStdout(), info, detectOpts)
	},
}

func printInfo(w io.Writer, info *distro.Info, opts *detectOptions) error {
	switch opts.Output {
	case "table":
		table := tablewriter.NewWriter(w)
		if !opts.NoHeaders {
			table.SetHeader([]string{"VENDOR", "RELEASE", "CODENAME", "FAMILY", "TAG", "SOURCE"})
		}
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderLine(false)
		table.SetTablePadding("\t")
		table.SetNoWhiteSpace(true)
		table.Append([]string{info.Vendor, info.Release, info.Codename, string(info.Family), info.DistroTag, info.Source})
		table.Render()
		return nil
	case "json":
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "env":
		// Shell assignments in the names the deployment scripts use.
		pairs := [][2]string{
			{"os_VENDOR", info.Vendor},
			{"os_RELEASE", info.Release},
			{"os_CODENAME", info.Codename},
			{"os_PACKAGE", string(info.Family)},
			{"DISTRO", info.DistroTag},
		}
		for _, p := range pairs {
			if _, err := fmt.Fprintf(w, "%s=%s\n", p[0], util.ShellQuote(p[1])); err != nil {
				return err
			}
		}
		return nil
	}
	return serrors.InvalidArgument("cmd.detect", "unknown output format %q", opts.Output)
}

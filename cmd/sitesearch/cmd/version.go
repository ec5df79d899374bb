package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkdragon/sitesearch/internal/output"
	"github.com/milkdragon/sitesearch/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var asJSON, short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the sitesearch version with the commit and build time it was built
from. Binaries built without ldflags report the VCS stamp the go command
embeds, marked +dirty when the work tree had local changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			switch {
			case short:
				_, err := fmt.Fprintln(w, version.Short())
				return err
			case asJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(version.GetInfo())
			}

			info := version.GetInfo()
			if _, err := fmt.Fprintln(w, version.String()); err != nil {
				return err
			}
			out := output.New(w)
			out.KeyValue("Platform", info.OS+"/"+info.Arch, 10)
			out.KeyValue("Fetch UA", version.UserAgent(), 10)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build info as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}

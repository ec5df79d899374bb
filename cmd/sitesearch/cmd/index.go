package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/milkdragon/sitesearch/internal/app"
	"github.com/milkdragon/sitesearch/internal/output"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the search index",
	}
	cmd.AddCommand(newIndexCheckCmd())
	return cmd
}

func newIndexCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [src]",
		Short: "Fetch and parse the index, then report what was found",
		Long: `Fetch the index once, the same way the search panel does, and report
the detected format, the number of posts and the number of malformed records
that were skipped.

src is an http(s) URL or a local path; it defaults to the configured index.`,
		Example: `  # Check the index hexo generate wrote
  sitesearch index check public/search.xml

  # Check the deployed index
  sitesearch index check https://blog.example.com/search.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ""
			if len(args) > 0 {
				src = args[0]
			}
			return runIndexCheck(cmd.Context(), cmd, src)
		},
	}
}

func runIndexCheck(ctx context.Context, cmd *cobra.Command, src string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.WithIndex(src), app.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer a.Close()

	out := output.NewAuto(cmd.OutOrStdout())
	start := time.Now()
	loadErr := a.Loader.Load(ctx)
	st := a.Loader.Status()

	if loadErr != nil {
		out.Errorf("Could not load %s", st.Location)
		out.KeyValue("Attempts", st.Fetches, 9)
		return loadErr
	}

	out.Successf("Loaded %s", st.Location)
	out.KeyValue("Format", st.Format, 9)
	out.KeyValue("Posts", st.Documents, 9)
	out.KeyValue("Skipped", st.Skipped, 9)
	out.KeyValue("Took", time.Since(start).Round(time.Millisecond), 9)
	if st.Skipped > 0 {
		out.Newline()
		out.Warningf("%d malformed record(s) were skipped; run with --debug for details", st.Skipped)
	}
	if st.Documents == 0 {
		out.Newline()
		out.Warning("The index has no posts; searches will always come back empty")
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/milkdragon/sitesearch/internal/app"
	serrors "github.com/milkdragon/sitesearch/internal/errors"
	"github.com/milkdragon/sitesearch/internal/tui"
)

func newTUICmd() *cobra.Command {
	var (
		indexSrc    string
		openBrowser bool
		altScreen   bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive search panel",
		Long: `Open the search panel in the terminal.

Keys:
  ctrl+k        open or close the panel
  esc           close the panel
  up/down       move the selection (also ctrl+p/ctrl+n)
  enter         open the selected post
  /             open the panel
  q, ctrl+c     quit

The index is fetched the first time the panel opens. The chosen post's URL
is printed on exit, or opened in the system browser with --open.`,
		Annotations: map[string]string{ownsTerminal: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), cmd, indexSrc, openBrowser, altScreen)
		},
	}

	cmd.Flags().StringVar(&indexSrc, "index", "", "Index URL or path (default: from config)")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open the chosen post in the system browser")
	cmd.Flags().BoolVar(&altScreen, "alt-screen", false, "Draw on the terminal's alternate screen")

	return cmd
}

func runTUI(ctx context.Context, cmd *cobra.Command, indexSrc string, openBrowser, altScreen bool) error {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if !tui.Interactive(in, out) {
		return serrors.ValidationError("the search panel needs an interactive terminal", nil).
			WithSuggestion("use 'sitesearch search <query>' for scripted use")
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cleanup, err := quietLogging(cmd, cfg.Server.LogLevel, false)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	panel := tui.NewPanel(tui.Options{
		Input:       in,
		Output:      out,
		StartOpen:   true,
		OpenBrowser: openBrowser,
		Resolve:     func(ref string) string { return app.ResolveURL(cfg.Site.BaseURL, ref) },
		AltScreen:   altScreen,
		Logger:      slog.Default(),
	})

	a, err := app.New(cfg,
		app.WithIndex(indexSrc),
		app.WithBindings(panel.Bindings()),
		app.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer a.Close()

	chosen, err := panel.Run(ctx, a.Dispatcher)
	if err != nil {
		return err
	}
	if chosen != "" && !openBrowser {
		_, err = fmt.Fprintln(out, chosen)
	}
	return err
}

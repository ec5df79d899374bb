package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/milkdragon/sitesearch/internal/app"
	"github.com/milkdragon/sitesearch/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var (
		transport string
		indexSrc  string
		preload   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog index to AI assistants over MCP",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools:
  search_site    search posts by substring, with highlighted excerpts
  index_status   report where the index comes from and whether it loaded

Resources:
  post://{position}  one post as markdown
  index://status     loader status as JSON

Logs go to ~/.sitesearch/logs/ only: stdout carries nothing but JSON-RPC.`,
		Example: `  # Claude Desktop / Cursor server entry
  sitesearch serve --config /path/to/blog`,
		Annotations: map[string]string{ownsTerminal: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, transport, indexSrc, preload)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "Transport type (default: server.transport)")
	cmd.Flags().StringVar(&indexSrc, "index", "", "Index URL or path (default: from config)")
	cmd.Flags().BoolVar(&preload, "preload", false, "Load the index before accepting requests")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, transport, indexSrc string, preload bool) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if transport == "" {
		transport = cfg.Server.Transport
	}

	cleanup, err := quietLogging(cmd, cfg.Server.LogLevel, true)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	a, err := app.New(cfg, app.WithIndex(indexSrc), app.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := mcp.NewServer(a.Loader, a.Matcher, cfg, root, a.Resolve)
	if err != nil {
		return err
	}
	srv.SetLogger(slog.Default())
	announce(ctx, srv, slog.Default(), preload)

	err = srv.Serve(ctx, transport)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// announce logs what the server exposes and, with preload, loads the index
// through the index_status tool so the first search does not pay for the
// fetch. It returns the status the preload produced, or nil.
func announce(ctx context.Context, srv *mcp.Server, logger *slog.Logger, preload bool) *mcp.IndexStatusOutput {
	name, ver := srv.Info()
	tools := srv.ListTools()
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	logger.Info("mcp server ready",
		slog.String("name", name),
		slog.String("version", ver),
		slog.Any("tools", names))

	if !preload {
		return nil
	}
	res, err := srv.CallTool(ctx, "index_status", map[string]any{"load": true})
	if err != nil {
		logger.Warn("index preload failed", slog.String("error", err.Error()))
		return nil
	}
	st, ok := res.(*mcp.IndexStatusOutput)
	if !ok {
		return nil
	}
	if st.Index.Error != "" {
		// The first tool call retries.
		logger.Warn("index preload failed",
			slog.String("location", st.Index.Location),
			slog.String("error", st.Index.Error))
		return st
	}
	logger.Info("index preloaded",
		slog.String("location", st.Index.Location),
		slog.Int("documents", st.Index.Documents))
	return st
}

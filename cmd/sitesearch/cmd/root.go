// Package cmd provides the CLI commands for sitesearch.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/milkdragon/sitesearch/internal/config"
	serrors "github.com/milkdragon/sitesearch/internal/errors"
	"github.com/milkdragon/sitesearch/internal/logging"
	"github.com/milkdragon/sitesearch/internal/profiling"
	"github.com/milkdragon/sitesearch/pkg/version"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	debug     bool
	configDir string
	profiles  profiling.Paths

	session        *profiling.Session
	loggingCleanup func()
}

// NewRootCmd creates the root command for the sitesearch CLI.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "sitesearch",
		Short: "Search a static blog's generated index",
		Long: `sitesearch searches the search.xml or search.json index that static
blog generators such as Hexo publish alongside a site.

Run 'sitesearch tui' for the interactive panel, 'sitesearch search <query>'
for one-shot queries, or 'sitesearch serve' to expose the index to AI
assistants over MCP.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("sitesearch version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging to ~/.sitesearch/logs/")
	cmd.PersistentFlags().StringVar(&g.configDir, "config", "", "Directory to search for .sitesearch.yaml (default: current directory)")
	cmd.PersistentFlags().StringVar(&g.profiles.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&g.profiles.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&g.profiles.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = g.start
	cmd.PersistentPostRunE = g.stop

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// ownsTerminal marks commands whose stdout must carry nothing but their own
// output. They set up file-only logging themselves via quietLogging.
const ownsTerminal = "owns-terminal"

// start enables debug logging and profiling when requested.
func (g *globalFlags) start(cmd *cobra.Command, _ []string) error {
	if g.debug && cmd.Annotations[ownsTerminal] == "" {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		g.loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}

	if g.profiles.Enabled() {
		s, err := profiling.Start(g.profiles)
		if err != nil {
			return err
		}
		g.session = s
	}
	return nil
}

func (g *globalFlags) stop(_ *cobra.Command, _ []string) error {
	var err error
	if g.session != nil {
		err = g.session.Stop()
		g.session = nil
	}
	if g.loggingCleanup != nil {
		slog.Info("Debug logging stopped")
		g.loggingCleanup()
		g.loggingCleanup = nil
	}
	return err
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		root.PrintErr(formatError(err))
	}
	return err
}

// formatError shows coded errors with their hint and code, and anything
// else (flag and argument errors) as a single line.
func formatError(err error) string {
	if _, ok := serrors.As(err); ok {
		return serrors.FormatForCLI(err)
	}
	return "Error: " + err.Error() + "\n"
}

// loadConfig loads the configuration for the site containing the --config
// directory, or the working directory, and returns it with the site root.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	dir := "."
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		dir = f.Value.String()
	}
	root, err := config.FindSiteRoot(dir)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

// quietLogging routes logs away from the terminal for commands that own it.
// Records go to the default log file when toFile is set or --debug is on,
// and are discarded otherwise.
func quietLogging(cmd *cobra.Command, level string, toFile bool) (func(), error) {
	path := ""
	if toFile {
		path = logging.DefaultLogPath()
	}
	if f := cmd.Flag("debug"); f != nil && f.Value.String() == "true" {
		level = "debug"
		path = logging.DefaultLogPath()
	}
	return logging.SetupQuiet(level, path)
}

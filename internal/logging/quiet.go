package logging

import (
	"log/slog"
)

// SetupQuiet installs a file-only default logger for modes that own stdout
// and stderr: the MCP stdio server and the terminal panel. Any stray write
// to the terminal would corrupt the protocol stream or the rendered frame.
// An empty path discards all records.
func SetupQuiet(level, path string) (func(), error) {
	if path == "" {
		slog.SetDefault(Discard())
		return func() {}, nil
	}

	logger, cleanup, err := Setup(Config{
		Level:     level,
		FilePath:  path,
		MaxSizeMB: 10,
		MaxFiles:  5,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	slog.Debug("quiet logging initialized", slog.String("log_file", path), slog.String("level", level))
	return cleanup, nil
}

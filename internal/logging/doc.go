// Package logging wires log/slog to a size-rotated JSON log file under
// ~/.sitesearch/logs. File logging is opt-in through --debug; server and
// terminal modes never write log lines to stdout.
package logging

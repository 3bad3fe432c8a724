// Package cli implements the watchlist command-line interface.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/dan-solli/watchlist/pkg/config"
	"github.com/dan-solli/watchlist/pkg/watchlist"
)

// Config holds the parsed global configuration and the command to run.
type Config struct {
	Watchlist watchlist.Config
	Command   string
	Args      []string
}

var errNoCommand = errors.New("no command given")

// ParseConfig reads WATCHLIST_* environment variables, then global flags,
// which override them. The first non-flag argument is the command.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg.Watchlist); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Watchlist.DBPath, "db", cfg.Watchlist.DBPath, "path to the SQLite database file")
	fs.StringVar(&cfg.Watchlist.DBDriver, "driver", cfg.Watchlist.DBDriver, "database/sql driver (sqlite or sqlite3)")
	fs.StringVar(&cfg.Watchlist.LogLevel, "log-level", cfg.Watchlist.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Watchlist.TracePath, "trace", cfg.Watchlist.TracePath, "JSON Lines trace file (empty disables)")
	fs.StringVar(&cfg.Watchlist.MetricsFile, "metrics", cfg.Watchlist.MetricsFile, "Prometheus textfile (empty disables)")
	fs.Usage = func() { usage(fs.Output(), fs) }

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return Config{}, errNoCommand
	}
	cfg.Command = fs.Arg(0)
	cfg.Args = fs.Args()[1:]
	return cfg, nil
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: watchlist [global flags] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "global flags:")
	fs.PrintDefaults()
}

// newLogger builds a text logger on w at the named level.
func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	if level == "" {
		level = "info"
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// Package main runs the movie watchlist command-line interface.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/dan-solli/watchlist/internal/cli"
	"github.com/dan-solli/watchlist/pkg/config"
	"github.com/dan-solli/watchlist/pkg/watchlist"
)

func main() {
	cfg, err := cli.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		if errors.Is(err, watchlist.ErrStorageUnavailable) {
			config.Exitf("watchlist storage is unavailable: %v", err)
		}
		config.Exitf("%v", err)
	}
}

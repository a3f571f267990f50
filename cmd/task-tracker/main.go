package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Makepad-fr/task-tracker/internal/cli"
	"github.com/Makepad-fr/task-tracker/internal/config"
	"github.com/Makepad-fr/task-tracker/internal/logging"
)

func main() {
	// Root flags (apply to every subcommand)
	root, err := cli.ParseRoot(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		cli.PrintHelp(os.Stdout)
		os.Exit(cli.ExitOK)
	}
	if err != nil {
		os.Exit(cli.Report(err, cli.Options{}))
	}

	cfg, err := config.Load(root.Overrides)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(cli.ExitError)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	logger.Debug("config resolved", "file", cfg.File, "theme", cfg.Theme)

	// Hand the remaining args to the CLI runner.
	os.Exit(cli.Run(root.Args, cli.Options{
		Config: cfg,
		Logger: logger,
	}))
}

package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/escala/internal/cli"
	"github.com/okian/escala/internal/config"
	"github.com/okian/escala/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, builds one roster and returns the process exit code:
// 0 on success, 1 on failure, 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("escala", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		budget    = fs.Float64("budget", 0, "Roster budget (default from config)")
		formation = fs.String("formation", "", "Formation name (default from config)")
		feedURL   = fs.String("feed", "", "Market API root (default from config)")
		snapshot  = fs.String("snapshot", "", "Read the market from a JSON snapshot file")
		asJSON    = fs.Bool("json", false, "Print the roster as JSON")
		logLevel  = fs.String("log-level", "warn", "Log level: debug, info, warn, error")
		help      = fs.Bool("help", false, "Show help")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *help {
		cli.ShowHelp(stdout)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = io.WriteString(stderr, "failed to load config: "+err.Error()+"\n")
		return 1
	}

	if err := logger.InitWithOptions(logger.WithFormat(cfg.LogFormat), logger.WithWriter(stderr)); err != nil {
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return 1
	}
	if err := logger.SetLevelString(*logLevel); err != nil {
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return 2
	}

	opts := cli.Options{
		Budget:       *budget,
		Formation:    *formation,
		FeedURL:      *feedURL,
		SnapshotFile: *snapshot,
		JSON:         *asJSON,
	}
	if err := cli.Run(ctx, cfg, opts, stdout, logger.Get()); err != nil {
		_, _ = io.WriteString(stderr, "escala: "+err.Error()+"\n")
		return 1
	}
	return 0
}

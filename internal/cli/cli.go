// Package cli implements the escala command: build one roster from the
// current market and print it.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/escala/internal/adapters/feed"
	service "github.com/okian/escala/internal/app"
	"github.com/okian/escala/internal/config"
	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/pkg/logger"
)

// ErrSnapshotFile reports an unreadable -snapshot file.
var ErrSnapshotFile = errors.New("cannot read snapshot file")

// Options holds the command-line overrides. Zero values keep the
// configured setting.
type Options struct {
	Budget       float64 // Roster budget
	Formation    string  // Formation name
	FeedURL      string  // Market API root
	SnapshotFile string  // Read the market from a JSON snapshot instead of the feed
	JSON         bool    // Print the roster as JSON
}

// Apply copies the overrides onto a copy of cfg.
func (o Options) Apply(cfg *config.Config) *config.Config {
	out := *cfg
	if o.Budget != 0 {
		out.Budget = o.Budget
	}
	if o.FeedURL != "" {
		out.FeedBaseURL = o.FeedURL
	}
	return &out
}

// Run builds one roster and writes it to out. An unknown formation is
// reported on the log and replaced by the configured default.
func Run(ctx context.Context, cfg *config.Config, opts Options, out io.Writer, log logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	cfg = opts.Apply(cfg)

	var extra []service.Option
	if opts.SnapshotFile != "" {
		snap, err := readSnapshot(opts.SnapshotFile)
		if err != nil {
			return err
		}
		extra = append(extra, service.WithSource(feed.Static(snap)))
		cfg.CacheBackend = config.CacheMemory
	}

	svc, closeCache, err := service.FromConfig(ctx, cfg, log, extra...)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()

	formationName := opts.Formation
	if formationName != "" && !svc.HasFormation(formationName) {
		log.Warn(ctx, "unknown formation; using default",
			logger.String("formation", formationName),
			logger.String("default", svc.DefaultFormation()),
		)
		formationName = ""
	}

	roster, err := svc.Allocate(ctx, model.Scenario{Budget: cfg.Budget, Formation: formationName})
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(roster)
	}
	return Render(out, roster)
}

func readSnapshot(path string) (feed.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return feed.Snapshot{}, fmt.Errorf("%w: %w", ErrSnapshotFile, err)
	}
	defer f.Close()

	var snap feed.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return feed.Snapshot{}, fmt.Errorf("%w: %s: %w", ErrSnapshotFile, path, err)
	}
	return snap, nil
}

// ShowHelp prints usage information for the escala command.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Escala Squad Builder
====================

Builds a fantasy football roster from the current player market.

Usage:
  go run ./cmd/escala [options]

Options:
  -budget float
        Roster budget (default from config, 100)
  -formation string
        Formation name, e.g. 4-3-3 or 4-4-2 (default from config)
  -feed string
        Market API root (default from config)
  -snapshot string
        Read the market from a JSON snapshot file instead of the feed
  -json
        Print the roster as JSON
  -log-level string
        debug, info, warn or error (default "warn")
  -help
        Show this help message

Configuration is read from ESCALA_CONFIG and ESCALA_* variables first;
flags override it.

Examples:
  # Default budget and formation
  go run ./cmd/escala

  # Bigger budget in a 4-4-2
  go run ./cmd/escala -budget 140 -formation 4-4-2
`)
}

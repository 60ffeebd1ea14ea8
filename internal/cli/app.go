package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/gauntlet/internal/catalog"
	"github.com/roach88/gauntlet/internal/config"
	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/judge"
	"github.com/roach88/gauntlet/internal/poll"
	"github.com/roach88/gauntlet/internal/realtime"
	"github.com/roach88/gauntlet/internal/session"
	"github.com/roach88/gauntlet/internal/store"
)

// App bundles the wired runtime for one CLI invocation.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Store   *store.Store
	Catalog *catalog.Catalog
	Clients judge.Clients
	Hub     *realtime.Hub
	Session *session.Service
	Poll    *poll.Orchestrator

	closers []func()
}

// openApp loads the configuration and opens every runtime dependency.
// Callers must Close the returned app.
func openApp(opts *RootOptions, errOut io.Writer) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, opts, errOut)

	st, err := store.Open(cfg.Data.DocumentPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}

	cat, err := catalog.Open(cfg.Data.CatalogPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening problem catalog: %w", err)
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		Catalog: cat,
		Hub:     realtime.NewHub(),
	}
	app.closers = append(app.closers, func() { cat.Close() })

	if dir := cfg.Judges.FixtureDir; dir != "" {
		logger.Info("using fixture judges", "dir", dir)
		app.Clients = judge.Clients{
			Codeforces: judge.NewFixture(domain.PlatformCodeforces, dir),
			AtCoder:    judge.NewFixture(domain.PlatformAtCoder, dir),
		}
	} else {
		cf := judge.NewCodeforces(cfg.CFInterval())
		at := judge.NewAtCoder(cfg.ATInterval())
		app.Clients = judge.Clients{Codeforces: cf, AtCoder: at}
		app.closers = append(app.closers, cf.Close, at.Close)
	}

	app.Session = session.New(st, cat, app.Clients, logger)
	app.Poll = poll.New(st, app.Clients, app.Hub, logger, poll.Options{
		Overlap:       cfg.OverlapDuration(),
		SweepInterval: cfg.SweepInterval(),
	})
	return app, nil
}

// Close releases everything openApp acquired, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newLogger(cfg config.Config, opts *RootOptions, errOut io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
}

// Package poll drives the refresh cycle for running sessions: throttled
// judge fetches, submission matching, one merge transaction per session,
// and the realtime fan-out after commit.
//
// A round for one session runs in three phases. First it snapshot-reads
// the session and its subjects and fetches each applicable platform's
// submissions, failures isolated per platform. Then it opens a single
// store transaction, re-fetches the live records, re-verifies the
// session is still running, credits new solves through the matcher and
// the stats engine, and advances the poll watermarks for the platforms
// whose fetch succeeded. Only after the transaction commits are
// realtime events published.
package poll

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/judge"
	"github.com/roach88/gauntlet/internal/realtime"
	"github.com/roach88/gauntlet/internal/store"
)

// Default policy parameters. Both are configurable; the overlap window
// compensates for the AtCoder aggregator returning submissions late or
// out of order.
const (
	DefaultOverlap       = 120 * time.Second
	DefaultSweepInterval = 30 * time.Second
)

// Options tunes the orchestrator.
type Options struct {
	// Overlap is subtracted from the AtCoder cursor on every fetch.
	Overlap time.Duration
	// SweepInterval spaces the background full sweeps.
	SweepInterval time.Duration
}

func (o *Options) normalize() {
	if o.Overlap <= 0 {
		o.Overlap = DefaultOverlap
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
}

// PolledFlags reports which platforms were successfully fetched in one
// round. A false flag means that platform's freshness is degraded; the
// round itself still succeeded.
type PolledFlags struct {
	Codeforces bool `json:"codeforces"`
	AtCoder    bool `json:"atcoder"`
}

// Orchestrator runs poll rounds over the store.
type Orchestrator struct {
	store   *store.Store
	clients judge.Clients
	hub     realtime.Publisher
	logger  *slog.Logger
	opts    Options

	now   func() int64
	newID func() string

	sweeping atomic.Bool
}

// New creates an orchestrator. hub may be nil when no realtime fan-out
// is wanted (CLI one-shot refreshes).
func New(st *store.Store, clients judge.Clients, hub realtime.Publisher, logger *slog.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	opts.normalize()
	return &Orchestrator{
		store:   st,
		clients: clients,
		hub:     hub,
		logger:  logger,
		opts:    opts,
		now:     func() int64 { return time.Now().Unix() },
		newID:   func() string { return uuid.NewString() },
	}
}

// Run sweeps all running sessions every SweepInterval until ctx is
// cancelled. If a sweep is still executing when the timer fires, the
// tick is skipped entirely rather than queued.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.opts.SweepInterval)
	defer ticker.Stop()

	o.logger.Info("poll sweep loop started", "interval", o.opts.SweepInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !o.sweeping.CompareAndSwap(false, true) {
				o.logger.Warn("previous sweep still running, skipping tick")
				continue
			}
			go func() {
				defer o.sweeping.Store(false)
				o.Sweep(ctx)
			}()
		}
	}
}

// Sweep polls every running contest and room once. Per-session errors
// are logged and do not stop the sweep.
func (o *Orchestrator) Sweep(ctx context.Context) {
	doc, err := o.store.Snapshot(ctx)
	if err != nil {
		o.logger.Error("sweep aborted: snapshot failed", "error", err)
		return
	}

	for _, c := range doc.Contests {
		if c.Status != domain.StatusRunning {
			continue
		}
		if _, _, err := o.RefreshContest(ctx, c.OwnerUserID, c.ID); err != nil {
			o.logger.Error("sweep: contest refresh failed", "contest_id", c.ID, "error", err)
		}
	}
	for _, r := range doc.Rooms {
		if r.Status != domain.StatusRunning {
			continue
		}
		if _, _, err := o.RefreshRoom(ctx, r.ID); err != nil {
			o.logger.Error("sweep: room refresh failed", "room_id", r.ID, "error", err)
		}
	}
}

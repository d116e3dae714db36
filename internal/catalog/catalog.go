// Package catalog holds the single normalized view of the dictionary. Every
// change reaches it through Reload, which fetches the full collection,
// normalizes it with the rule set active at that moment, recomputes stats
// and swaps the snapshot in one step. Nothing patches a snapshot in place.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/sarf/internal/category"
	"github.com/papapumpkin/sarf/internal/lexicon"
	"github.com/papapumpkin/sarf/internal/normalize"
	"github.com/papapumpkin/sarf/internal/stats"
	"github.com/papapumpkin/sarf/internal/telemetry"
	"github.com/papapumpkin/sarf/internal/view"
)

// Lister fetches raw listings from the service.
type Lister interface {
	ListRoots(ctx context.Context) ([]byte, error)
	ListSchemes(ctx context.Context) ([]byte, error)
}

// Recorder receives telemetry events.
type Recorder interface {
	Emit(evt telemetry.Event) error
}

// Snapshot is one consistent, fully normalized state of the dictionary.
type Snapshot struct {
	Roots    []lexicon.Root
	Schemes  []lexicon.Scheme
	Stats    stats.Snapshot
	Skipped  int
	LoadedAt time.Time
}

// Options configures a Catalog. Zero values fall back to the default rule
// set, a no-op logger, no telemetry and the wall clock.
type Options struct {
	Rules    *category.Source
	Logger   *zap.Logger
	Recorder Recorder
	Now      func() time.Time
}

// Catalog owns the current Snapshot. It is safe for concurrent use.
type Catalog struct {
	lister   Lister
	rules    *category.Source
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time

	current atomic.Pointer[Snapshot]
	reloads atomic.Uint64
}

// New creates a Catalog with an empty snapshot.
func New(lister Lister, opts Options) *Catalog {
	c := &Catalog{
		lister:   lister,
		rules:    opts.Rules,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		now:      opts.Now,
	}
	if c.rules == nil {
		c.rules = category.NewSource(nil)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.current.Store(&Snapshot{Stats: stats.Aggregate(nil, c.now())})
	return c
}

// Rules returns the rule source the catalog normalizes with.
func (c *Catalog) Rules() *category.Source { return c.rules }

// Reload fetches roots and schemes concurrently and replaces the snapshot.
// On error the previous snapshot stays in place. Concurrent reloads all run
// to completion; the one that finishes last wins.
func (c *Catalog) Reload(ctx context.Context) (*Snapshot, error) {
	seq := c.reloads.Add(1)
	c.emit(telemetry.Event{Kind: telemetry.KindReloadStart, Data: map[string]any{"seq": seq}})
	start := c.now()

	var rawRoots, rawSchemes []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawRoots, err = c.lister.ListRoots(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rawSchemes, err = c.lister.ListSchemes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.logger.Info("reload failed", zap.Uint64("seq", seq), zap.Error(err))
		c.emit(telemetry.Event{Kind: telemetry.KindReloadFailed, Data: map[string]any{"seq": seq, "error": err.Error()}})
		return nil, fmt.Errorf("reload: %w", err)
	}

	// One rule set for the whole pass.
	n := &normalize.Normalizer{Classifier: c.rules.Current(), Now: c.now, Logger: c.logger}
	res := n.Roots(rawRoots)
	now := c.now()
	snap := &Snapshot{
		Roots:    res.Roots,
		Schemes:  n.Schemes(rawSchemes),
		Stats:    stats.Aggregate(res.Roots, now),
		Skipped:  res.Skipped,
		LoadedAt: now,
	}
	c.current.Store(snap)

	c.logger.Debug("reload done",
		zap.Uint64("seq", seq),
		zap.Int("roots", snap.Stats.TotalRoots),
		zap.Int("derivations", snap.Stats.TotalDerivations),
		zap.Int("schemes", len(snap.Schemes)),
		zap.Duration("elapsed", now.Sub(start)))
	c.emit(telemetry.Event{Kind: telemetry.KindReloadDone, Data: map[string]any{
		"seq":         seq,
		"roots":       snap.Stats.TotalRoots,
		"derivations": snap.Stats.TotalDerivations,
		"schemes":     len(snap.Schemes),
		"skipped":     snap.Skipped,
	}})
	return snap, nil
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Stats returns the statistics of the current snapshot.
func (c *Catalog) Stats() stats.Snapshot {
	return c.Snapshot().Stats
}

// View filters and orders the current roots.
func (c *Catalog) View(query string, order view.Order, filter lexicon.Category) []lexicon.Root {
	return view.View(c.Snapshot().Roots, query, order, filter)
}

// Derivations flattens the current roots into derivation entries.
func (c *Catalog) Derivations(q view.DerivationQuery) []view.Entry {
	return view.Derivations(c.Snapshot().Roots, q)
}

func (c *Catalog) emit(evt telemetry.Event) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Emit(evt); err != nil {
		c.logger.Warn("telemetry emit failed", zap.String("kind", evt.Kind), zap.Error(err))
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/sarf/internal/api"
	"github.com/papapumpkin/sarf/internal/catalog"
	"github.com/papapumpkin/sarf/internal/category"
	"github.com/papapumpkin/sarf/internal/config"
	"github.com/papapumpkin/sarf/internal/journal"
	"github.com/papapumpkin/sarf/internal/mutation"
	"github.com/papapumpkin/sarf/internal/telemetry"
	"github.com/papapumpkin/sarf/internal/ui"
)

// errMutationFailed marks a mutation that ended Failed. Its reason has
// already been printed.
var errMutationFailed = errors.New("mutation failed")

// session bundles what one command invocation works with.
type session struct {
	cfg     config.Config
	client  *api.Client
	rules   *category.Source
	catalog *catalog.Catalog
	emitter *telemetry.Emitter
	journal *journal.Journal
	printer *ui.Printer
}

// openSession loads configuration and rules and wires the catalog. Telemetry
// is best-effort: if the file cannot be opened the session runs without it.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	rules := category.Default()
	if cfg.RulesPath != "" {
		if rules, err = category.LoadRules(cfg.RulesPath); err != nil {
			return nil, err
		}
	}

	s := &session{
		cfg:     cfg,
		client:  api.New(cfg.APIURL, cfg.Timeout, logger),
		rules:   category.NewSource(rules),
		printer: ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}
	if cfg.TelemetryPath != "" {
		em, err := telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			logger.Warn("telemetry disabled", zap.Error(err))
		} else {
			s.emitter = em
		}
	}
	s.catalog = catalog.New(s.client, catalog.Options{
		Rules:    s.rules,
		Logger:   logger,
		Recorder: s.emitter,
	})
	return s, nil
}

// errNoJournal is returned when journal_path is empty.
var errNoJournal = errors.New("mutation history is disabled: journal_path is empty")

// openJournal opens the mutation history database.
func (s *session) openJournal(ctx context.Context) (*journal.Journal, error) {
	if s.journal != nil {
		return s.journal, nil
	}
	if s.cfg.JournalPath == "" {
		return nil, errNoJournal
	}
	j, err := journal.Open(ctx, s.cfg.JournalPath)
	if err != nil {
		return nil, err
	}
	s.journal = j
	return j, nil
}

// controller builds a mutation controller that reloads the catalog on
// success and records outcomes in the journal when it can be opened.
func (s *session) controller(ctx context.Context) *mutation.Controller {
	opts := mutation.Options{
		Logger:    logger,
		Recorder:  s.emitter,
		ResultTTL: s.cfg.ResultTTL,
	}
	if j, err := s.openJournal(ctx); err != nil {
		if !errors.Is(err, errNoJournal) {
			logger.Warn("mutation history disabled", zap.Error(err))
		}
	} else {
		opts.Sink = j
	}
	return mutation.New(s.client, s.catalog, opts)
}

// reload refreshes the catalog, reporting failures through the api error
// taxonomy.
func (s *session) reload(ctx context.Context) (*catalog.Snapshot, error) {
	snap, err := s.catalog.Reload(ctx)
	if err != nil {
		return nil, errors.New(api.ReasonOf(err))
	}
	return snap, nil
}

func (s *session) Close() {
	if err := s.emitter.Close(); err != nil {
		logger.Warn("closing telemetry", zap.Error(err))
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			logger.Warn("closing journal", zap.Error(err))
		}
	}
}

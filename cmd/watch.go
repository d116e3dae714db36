package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/sarf/internal/category"
	"github.com/papapumpkin/sarf/internal/telemetry"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recategorize the collection whenever the rule file changes",
	Long: `Watches the category rule file (--rules or rules_path). Each time it is
saved the catalog is reloaded with the new rules and the statistics are
printed again. A rule file that fails to parse is reported and the previous
rules stay in effect. Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.cfg.RulesPath == "" {
		return fmt.Errorf("watch: no rule file; pass --rules or set rules_path")
	}

	w, err := category.NewWatcher(s.cfg.RulesPath, s.rules, logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx := cmd.Context()
	snap, err := s.reload(ctx)
	if err != nil {
		return err
	}
	s.printer.Stats(snap.Stats)
	s.printer.Info("watching " + w.Path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-w.Reloads:
			if !ok {
				return nil
			}
			if r.Err != nil {
				s.printer.Warn(r.Err.Error() + "; keeping previous rules")
				continue
			}
			if s.emitter != nil {
				if err := s.emitter.Emit(telemetry.Event{
					Kind: telemetry.KindRulesReloaded,
					Data: map[string]any{"path": w.Path, "rules": len(r.Categorizer.Rules())},
				}); err != nil {
					logger.Warn("telemetry emit failed", zap.Error(err))
				}
			}
			snap, err := s.reload(ctx)
			if err != nil {
				s.printer.Warn(err.Error())
				continue
			}
			s.printer.Info("rules reloaded")
			s.printer.Stats(snap.Stats)
		}
	}
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/sarf/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent mutations and their outcomes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		j, err := s.openJournal(cmd.Context())
		if err != nil {
			return err
		}
		entries, err := j.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		s.printer.History(entries)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", journal.DefaultLimit, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

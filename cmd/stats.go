package cmd

import "github.com/spf13/cobra"

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		snap, err := s.reload(cmd.Context())
		if err != nil {
			return err
		}
		s.printer.Stats(snap.Stats)
		if snap.Skipped > 0 {
			s.printer.Warn(pluralize(snap.Skipped, "malformed root record was", "malformed root records were") + " skipped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/sarf/internal/view"
)

var derivesCmd = &cobra.Command{
	Use:   "derives",
	Short: "List derived words across all roots",
	Args:  cobra.NoArgs,
	RunE:  runDerives,
}

func init() {
	derivesCmd.Flags().String("root", "", "only derivations of this root")
	derivesCmd.Flags().String("scheme", "", "only derivations built with this scheme")
	derivesCmd.Flags().String("search", "", "substring to match against word, root or scheme")
	derivesCmd.Flags().String("sort", "word", "sort key: word or date")
	derivesCmd.Flags().String("order", "", "sort order: asc or desc (default from config)")
	rootCmd.AddCommand(derivesCmd)
}

func runDerives(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	order, err := orderFlag(cmd, s.cfg.SortOrder)
	if err != nil {
		return err
	}
	rawSort, _ := cmd.Flags().GetString("sort")
	sortBy, err := view.ParseSortKey(rawSort)
	if err != nil {
		return err
	}
	q := view.DerivationQuery{SortBy: sortBy, Order: order}
	q.Root, _ = cmd.Flags().GetString("root")
	q.Scheme, _ = cmd.Flags().GetString("scheme")
	q.Search, _ = cmd.Flags().GetString("search")

	if _, err := s.reload(cmd.Context()); err != nil {
		return err
	}
	s.printer.Derivations(s.catalog.Derivations(q))
	return nil
}

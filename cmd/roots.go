package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/sarf/internal/mutation"
	"github.com/papapumpkin/sarf/internal/view"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List roots with their derived words",
	Long: `Lists roots alphabetically (Arabic collation) with their derivations.

--search keeps roots whose text, or any derivation's word or scheme, contains
the query. --category keeps roots with at least one derivation in that
category.`,
	Args: cobra.NoArgs,
	RunE: runRoots,
}

var rootsAddCmd = &cobra.Command{
	Use:   "add <root>",
	Short: "Add a three-letter root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, func(ctx context.Context, c *mutation.Controller) (mutation.Status, error) {
			return c.Add(ctx, mutation.Input{Target: mutation.TargetRoot, Name: args[0]})
		})
	},
}

var rootsRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, func(ctx context.Context, c *mutation.Controller) (mutation.Status, error) {
			return c.Update(ctx, mutation.RootKey(args[0]), args[1])
		})
	},
}

var rootsDeleteCmd = &cobra.Command{
	Use:   "delete <root>",
	Short: "Delete a root and its derivations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, mutation.RootKey(args[0]))
	},
}

func init() {
	rootsCmd.Flags().String("search", "", "substring to match against root, word or scheme")
	rootsCmd.Flags().String("order", "", "sort order: asc or desc (default from config)")
	rootsCmd.Flags().String("category", "all", "only roots with a derivation in this category")
	rootsDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	rootsCmd.AddCommand(rootsAddCmd, rootsRenameCmd, rootsDeleteCmd)
	rootCmd.AddCommand(rootsCmd)
}

func runRoots(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	order, err := orderFlag(cmd, s.cfg.SortOrder)
	if err != nil {
		return err
	}
	search, _ := cmd.Flags().GetString("search")
	cat, _ := cmd.Flags().GetString("category")

	if _, err := s.reload(cmd.Context()); err != nil {
		return err
	}
	s.printer.Roots(s.catalog.View(search, order, view.ParseFilter(cat)), order)
	return nil
}

// orderFlag reads --order, falling back to the configured order.
func orderFlag(cmd *cobra.Command, fallback string) (view.Order, error) {
	raw, _ := cmd.Flags().GetString("order")
	if raw == "" {
		raw = fallback
	}
	return view.ParseOrder(raw)
}

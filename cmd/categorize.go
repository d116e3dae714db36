package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize <scheme>...",
	Short: "Show the category inferred for scheme names",
	Long:  "Classifies scheme names with the active rule set. No request is made to the service.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, scheme := range args {
			s.printer.Category(scheme, s.rules.Categorize(scheme))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

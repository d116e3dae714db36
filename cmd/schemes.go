package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/sarf/internal/lexicon"
	"github.com/papapumpkin/sarf/internal/mutation"
)

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List morphological schemes and their categories",
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
		s.printer.Schemes(snap.Schemes)
		return nil
	},
}

var schemesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a scheme such as مفعال",
	Long: `Adds a scheme. The name must contain the radical placeholders ف, ع and ل.
--type is one of NORMAL, MAZID or CUSTOM (default CUSTOM).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawType, _ := cmd.Flags().GetString("type")
		typ, err := parseSchemeType(rawType)
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("description")
		return runMutation(cmd, func(ctx context.Context, c *mutation.Controller) (mutation.Status, error) {
			return c.Add(ctx, mutation.Input{Target: mutation.TargetScheme, Name: args[0], Type: typ, Description: desc})
		})
	},
}

var schemesRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Replace a scheme's pattern",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, func(ctx context.Context, c *mutation.Controller) (mutation.Status, error) {
			return c.Update(ctx, mutation.SchemeKey(args[0]), args[1])
		})
	},
}

var schemesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, mutation.SchemeKey(args[0]))
	},
}

func init() {
	schemesAddCmd.Flags().String("type", string(lexicon.SchemeCustom), "scheme type: NORMAL, MAZID or CUSTOM")
	schemesAddCmd.Flags().String("description", "", "free-text description")
	schemesDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	schemesCmd.AddCommand(schemesAddCmd, schemesRenameCmd, schemesDeleteCmd)
	rootCmd.AddCommand(schemesCmd)
}

func parseSchemeType(s string) (lexicon.SchemeType, error) {
	switch t := lexicon.SchemeType(strings.ToUpper(strings.TrimSpace(s))); t {
	case "":
		return lexicon.SchemeCustom, nil
	case lexicon.SchemeNormal, lexicon.SchemeMazid, lexicon.SchemeCustom:
		return t, nil
	default:
		return "", fmt.Errorf("invalid scheme type %q: want NORMAL, MAZID or CUSTOM", s)
	}
}

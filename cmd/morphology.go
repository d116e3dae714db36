package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/sarf/internal/api"
)

var generateCmd = &cobra.Command{
	Use:   "generate <root> <scheme>",
	Short: "Apply a scheme to a root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		word, err := s.client.Generate(cmd.Context(), args[0], args[1])
		if err != nil {
			return errors.New(api.ReasonOf(err))
		}
		s.printer.Generated(args[0], args[1], word)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <root> <word>",
	Short: "Check whether a word derives from a root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		v, err := s.client.Validate(cmd.Context(), args[0], args[1])
		if err != nil {
			return errors.New(api.ReasonOf(err))
		}
		s.printer.Validation(args[0], args[1], v)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <word>",
	Short: "Find the root and scheme of a word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		a, err := s.client.Analyze(cmd.Context(), args[0])
		if err != nil {
			return errors.New(api.ReasonOf(err))
		}
		s.printer.Analysis(args[0], a)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd, validateCmd, analyzeCmd)
}

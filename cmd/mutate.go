package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/sarf/internal/mutation"
	"github.com/papapumpkin/sarf/internal/ui"
)

// runMutation drives one controller operation and reports its result. A
// Failed result becomes errMutationFailed so the process exits non-zero.
func runMutation(cmd *cobra.Command, op func(context.Context, *mutation.Controller) (mutation.Status, error)) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	st, err := op(ctx, s.controller(ctx))
	if err != nil {
		return err
	}
	return report(s.printer, st)
}

// runDelete asks for confirmation unless yes is set, then deletes key.
func runDelete(cmd *cobra.Command, key mutation.Key) error {
	yes, _ := cmd.Flags().GetBool("yes")
	return runMutation(cmd, func(ctx context.Context, c *mutation.Controller) (mutation.Status, error) {
		st, err := c.RequestDelete(key)
		if err != nil || st.State != mutation.Confirming {
			return st, err
		}
		key = st.Key
		if !yes {
			question := fmt.Sprintf("delete %s %s?", key.Target, key.Name)
			ok, err := ui.Confirm(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), question)
			if err != nil || !ok {
				if _, cerr := c.Cancel(key); cerr != nil {
					return st, cerr
				}
				if err != nil {
					return st, err
				}
				return mutation.Status{Key: key, Op: mutation.OpDelete, State: mutation.Idle}, nil
			}
		}
		return c.ConfirmDelete(ctx, key)
	})
}

func report(p *ui.Printer, st mutation.Status) error {
	if st.State == mutation.Idle {
		p.Info("cancelled")
		return nil
	}
	p.Status(st)
	if st.State == mutation.Failed {
		reason := "failed"
		if st.Failure != nil {
			reason = st.Failure.Reason
		}
		return fmt.Errorf("%w: %s", errMutationFailed, reason)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReconcileCommand(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Mark generations left in processing as failed",
		Long:  "Mark generations left in processing by a previous server run as failed. Run only while no server is serving requests.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStack()
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.services.Generation.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reconciled %d generation(s)\n", n)
			return nil
		},
	}
}

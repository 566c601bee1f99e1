package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chargebook/backend/services/booking-client/internal/app"
	"chargebook/backend/services/booking-client/internal/models"
)

func newSlotsCommand(opts *options) *cobra.Command {
	var portID int64
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show the current slots of a port",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				slots, err := a.Slots(ctx, portID)
				if err != nil {
					return err
				}
				return printSlots(cmd, slots)
			})
		},
	}
	cmd.Flags().Int64Var(&portID, "port", 0, "port id")
	_ = cmd.MarkFlagRequired("port")
	return cmd
}

func printSlots(cmd *cobra.Command, slots []models.Slot) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tNOTE")
	for _, s := range slots {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", s.ID, s.Number, s.Status, orDash(s.BlockedReason()))
	}
	return tw.Flush()
}

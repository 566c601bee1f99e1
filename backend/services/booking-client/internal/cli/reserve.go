package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chargebook/backend/services/booking-client/internal/app"
	"chargebook/backend/services/booking-client/internal/booking"
)

func newReserveCommand(opts *options) *cobra.Command {
	var req app.ReserveRequest
	cmd := &cobra.Command{
		Use:     "reserve",
		Short:   "Reserve a 15 minute charging window on a slot",
		Example: "  booking-cli reserve --station 10 --port 7 --slot 1 --date 2024-06-01 --time 09:30",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				res, err := a.Reserve(ctx, req)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), booking.UserMessage(err))
					return err
				}

				loc := a.Calculator().Location()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "reservation %d %s (vehicle %d)\n", res.ID, res.Status, res.VehicleID)
				for _, item := range res.Items {
					fmt.Fprintf(out, "  slot %d  %s - %s\n", item.SlotID,
						item.StartTime.In(loc).Format("2006-01-02 15:04"),
						item.EndTime.In(loc).Format("15:04"))
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&req.StationID, "station", 0, "station id")
	cmd.Flags().Int64Var(&req.PortID, "port", 0, "port id")
	cmd.Flags().Int64Var(&req.SlotID, "slot", 0, "slot id")
	cmd.Flags().Int64Var(&req.VehicleID, "vehicle", 0, "vehicle id (defaults to your remembered or first vehicle)")
	cmd.Flags().StringVar(&req.Date, "date", "", "start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.Clock, "time", "", "start time, HH:MM")
	for _, name := range []string{"station", "port", "slot", "date", "time"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chargebook/backend/services/booking-client/internal/app"
	"chargebook/backend/services/booking-client/internal/models"
	"chargebook/backend/services/booking-client/internal/wizard"
)

func newWatchCommand(opts *options) *cobra.Command {
	var stationID, portID int64
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print live slot updates of a port until interrupted",
		Long: "Print live slot updates of a port until interrupted.\n\n" +
			"With --station the port is opened in a booking session first, so only\n" +
			"updates for a port the station offers are shown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				stamp := func() string {
					return time.Now().In(a.Calculator().Location()).Format("15:04:05")
				}
				if stationID == 0 {
					return a.Watch(ctx, portID, func(slots []models.Slot) {
						printSlotCount(out, stamp(), portID, slots)
					})
				}
				return watchSession(ctx, a, out, stamp, stationID, portID)
			})
		},
	}
	cmd.Flags().Int64Var(&stationID, "station", 0, "station id; watches within a booking session")
	cmd.Flags().Int64Var(&portID, "port", 0, "port id")
	_ = cmd.MarkFlagRequired("port")
	return cmd
}

func watchSession(ctx context.Context, a *app.App, out io.Writer, stamp func() string, stationID, portID int64) error {
	st, err := a.Station(ctx, stationID)
	if err != nil {
		return err
	}
	w := a.NewWizard()
	defer w.Close()

	if err := w.SelectStation(st); err != nil {
		return err
	}
	ok, err := w.SelectPort(ctx, portID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("port %d of station %d cannot be booked right now", portID, stationID)
	}

	return a.WatchWizard(ctx, w, func(sel wizard.Selection) {
		var free []string
		for _, s := range sel.Slots {
			if s.Selectable() {
				free = append(free, fmt.Sprintf("%d", s.Number))
			}
		}
		if len(free) == 0 {
			fmt.Fprintf(out, "%s port %d: no free slots\n", stamp(), portID)
			return
		}
		fmt.Fprintf(out, "%s port %d: free slots %s\n", stamp(), portID, strings.Join(free, ", "))
	})
}

func printSlotCount(out io.Writer, stamp string, portID int64, slots []models.Slot) {
	available := 0
	for _, s := range slots {
		if s.Selectable() {
			available++
		}
	}
	fmt.Fprintf(out, "%s port %d: %d/%d slots available\n", stamp, portID, available, len(slots))
}

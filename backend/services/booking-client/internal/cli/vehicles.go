package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chargebook/backend/services/booking-client/internal/app"
)

func newVehiclesCommand(opts *options) *cobra.Command {
	var forget bool
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "List your vehicles; * marks the one reservations use by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if forget {
					if err := a.ForgetVehicle(ctx); err != nil {
						return fmt.Errorf("forget default vehicle: %w", err)
					}
					fmt.Fprintln(out, "default vehicle cleared")
				}

				vehicles, def, err := a.Vehicles(ctx)
				if err != nil {
					return err
				}
				if len(vehicles) == 0 {
					fmt.Fprintln(out, "no vehicles registered")
					return nil
				}
				for _, v := range vehicles {
					mark := " "
					if v.ID == def.ID {
						mark = "*"
					}
					fmt.Fprintf(out, "%s %4d  %s\n", mark, v.ID, v.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&forget, "forget", false, "clear the remembered default vehicle first")
	return cmd
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chargebook/backend/services/booking-client/internal/app"
	"chargebook/backend/services/booking-client/internal/catalog"
	"chargebook/backend/services/booking-client/internal/models"
)

func newStationsCommand(opts *options) *cobra.Command {
	var (
		filter   catalog.Filter
		lat, lon float64
	)
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List stations, nearest first when --lat/--lon are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if latSet != lonSet {
				return errors.New("--lat and --lon must be given together")
			}
			var user *catalog.Coordinate
			if latSet {
				user = &catalog.Coordinate{Lat: lat, Lon: lon}
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				candidates, err := a.Stations(ctx, filter, user)
				if err != nil {
					return err
				}
				return printStations(cmd, candidates)
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "your latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "your longitude")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "match name or address")
	cmd.Flags().StringVar(&filter.Type, "type", catalog.All, "AC, DC, DC_ULTRA or all")
	cmd.Flags().StringVar(&filter.Region, "region", catalog.All, "district, e.g. \"District 1\"")
	return cmd
}

func printStations(cmd *cobra.Command, candidates []catalog.Candidate) error {
	if len(candidates) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "no stations match")
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tDISTRICT\tDISTANCE\tSTATUS\tPORTS")
	for _, c := range candidates {
		st := c.Station
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			st.ID, st.Name, st.Type(), orDash(st.District()), distanceLabel(c), st.Status, portsLabel(st.Ports))
	}
	return tw.Flush()
}

func distanceLabel(c catalog.Candidate) string {
	if !c.DistanceKnown {
		return "-"
	}
	return fmt.Sprintf("%.1f km", c.DistanceKM)
}

func portsLabel(ports []models.Port) string {
	available := 0
	for _, p := range ports {
		if p.Available() {
			available++
		}
	}
	return fmt.Sprintf("%d/%d available", available, len(ports))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

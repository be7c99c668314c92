package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tidbyt.dev/gtfsview/model"
)

func (c *cli) stopsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stops <feed> [lat lng] [limit]",
		Short: "Lists stops near a geographical location",
		Args:  cobra.RangeArgs(1, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p model.Point
			var limit int
			var err error

			gotLocation := false
			if len(args) == 2 {
				return fmt.Errorf("missing lng")
			}
			if len(args) >= 3 {
				gotLocation = true
				p, err = model.ParsePoint(args[1], args[2])
				if err != nil {
					return err
				}
			}
			if len(args) == 4 {
				limit, err = strconv.Atoi(args[3])
				if err != nil {
					return fmt.Errorf("invalid limit: %w", err)
				}
				if limit < 0 {
					return fmt.Errorf("limit must be >= 0")
				}
			}

			feed, err := c.loadFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			stops := feed.NearbyStops(p, limit, nil)
			if !gotLocation {
				sort.SliceStable(stops, func(i, j int) bool {
					return stops[i].Name < stops[j].Name
				})
			}

			for _, stop := range stops {
				if gotLocation {
					fmt.Fprintf(
						cmd.OutOrStdout(), "%s: %s (%.2f km)\n",
						stop.ID, stop.Name, model.HaversineDistance(p, stop.Point),
					)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", stop.ID, stop.Name)
				}
			}
			return nil
		},
	}

	// Everything after the feed is positional, so that western
	// longitudes aren't taken for flags.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func (c *cli) directionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "directions <feed> <stop_id>",
		Short: "Lists the routes and directions departing a stop",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := c.loadFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, rd := range feed.RouteDirections(args[1]) {
				fmt.Fprintf(
					cmd.OutOrStdout(), "%s %s: %s\n",
					rd.RouteID, rd.Direction, strings.Join(rd.Headsigns, ", "),
				)
			}
			return nil
		},
	}
}

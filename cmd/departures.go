package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tidbyt.dev/gtfsview"
	"tidbyt.dev/gtfsview/model"
)

func (c *cli) departuresCmd() *cobra.Command {
	var (
		window    time.Duration
		limit     int
		direction int
		routeID   string
		at        string
	)

	cmd := &cobra.Command{
		Use:   "departures <feed> <stop_id>",
		Short: "Lists upcoming departures from a stop or station",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if at != "" {
				var err error
				start, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}

			filter := gtfs.DepartureFilter{RouteID: routeID, Limit: limit}
			switch direction {
			case -1:
			case 0:
				filter.Directions = []model.Direction{model.DirectionOutbound}
			case 1:
				filter.Directions = []model.Direction{model.DirectionInbound}
			default:
				return fmt.Errorf("direction must be 0 or 1")
			}

			feed, err := c.loadFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			departures, err := feed.Departures(args[1], start, window, filter)
			if err != nil {
				return err
			}

			for _, d := range departures {
				fmt.Fprintf(
					cmd.OutOrStdout(), "%s %s %s %s\n",
					d.Time.Format("15:04:05"), d.RouteID, d.StopID, d.Headsign,
				)
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&window, "window", "W", 15*time.Minute, "Time window to search for departures")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Limit the number of departures returned")
	cmd.Flags().IntVarP(&direction, "direction", "d", -1, "Restrict to a specific direction_id")
	cmd.Flags().StringVarP(&routeID, "route", "r", "", "Restrict to a specific route")
	cmd.Flags().StringVarP(&at, "at", "", "", "Window start in RFC 3339 (default now)")

	return cmd
}

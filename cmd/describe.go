package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"tidbyt.dev/gtfsview"
	"tidbyt.dev/gtfsview/model"
)

func (c *cli) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <feed>",
		Short: "Summarizes a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := c.loadFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), feed.Describe())
			if first, last, ok := feed.ServiceDates(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "service: %s - %s\n", first, last)
			}
			return nil
		},
	}
}

func (c *cli) boundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bounds <feed> [agency_id]",
		Short: "Prints the bounding box of a feed, or of one agency's stops",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := c.loadFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var bounds model.Rectangle
			if len(args) == 2 {
				view, err := feed.View(args[1])
				if err != nil {
					return err
				}
				bounds, err = gtfs.StopsBounds(view.StopsForAgency(args[1]))
				if err != nil {
					return err
				}
			} else {
				bounds, err = feed.Bounds()
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), bounds)
			return nil
		},
	}
}

func (c *cli) servicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services <feed> <date>",
		Short: "Lists the service IDs active on a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1])
			if err != nil {
				return err
			}

			feed, err := c.loadFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			services := []string{}
			for id := range feed.ActiveServiceIDs(date) {
				services = append(services, id)
			}
			sort.Strings(services)

			for _, id := range services {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

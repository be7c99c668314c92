package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) visitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visits <feed> <date> <agency_id>",
		Short: "Lists an agency's stop visits on a date",
		Long:  "Prints every stop visit of the agency's running trips on a date, in arrival order",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1])
			if err != nil {
				return err
			}

			feed, err := c.loadFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			visits, err := feed.StopVisits(date, args[2])
			if err != nil {
				return err
			}

			for _, v := range visits {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func (c *cli) eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events <feed> <date> <agency_id>",
		Short: "Plays back an agency's service day",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[1])
			if err != nil {
				return err
			}

			feed, err := c.loadFeed(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			events, err := feed.DayEvents(date, args[2])
			if err != nil {
				return err
			}

			for _, e := range events {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
}

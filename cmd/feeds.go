package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tidbyt.dev/gtfsview/storage"
)

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <zip|url>",
		Short: "Stores a feed archive",
		Long: "Parses a feed archive and stores it. Archives on disk can then be " +
			"queried as file://<absolute path>.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, headers, err := c.source(args[0])
			if err != nil {
				return err
			}

			m, err := c.manager()
			if err != nil {
				return err
			}

			var metadata *storage.FeedMetadata
			if isURL(source) {
				metadata, err = m.Refresh(cmd.Context(), source, headers)
			} else {
				var url string
				url, err = fileURL(source)
				if err != nil {
					return err
				}
				var buf []byte
				buf, err = os.ReadFile(source)
				if err != nil {
					return errors.Wrap(err, "reading feed")
				}
				metadata, err = m.Import(url, buf)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.OutOrStdout(), "%s %s %s-%s\n",
				metadata.URL, metadata.Hash, metadata.CalendarStartDate, metadata.CalendarEndDate,
			)
			return nil
		},
	}
}

func (c *cli) feedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feeds [url]",
		Short: "Lists stored feeds, most recent first",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStorage()
			if err != nil {
				return err
			}

			filter := storage.ListFeedsFilter{}
			if len(args) == 1 {
				filter.URL = args[0]
			}

			feeds, err := s.ListFeeds(filter)
			if err != nil {
				return err
			}

			for _, f := range feeds {
				fmt.Fprintf(
					cmd.OutOrStdout(), "%s %s %s %s %s-%s\n",
					f.RetrievedAt.Format(time.RFC3339), f.URL, f.Hash,
					f.Timezone, f.CalendarStartDate, f.CalendarEndDate,
				)
			}
			return nil
		},
	}
}

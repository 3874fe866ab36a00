package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	episodecmd "github.com/flohusson/attitude-emoi/internal/commands/episodes"
	"github.com/flohusson/attitude-emoi/internal/di"
	"github.com/flohusson/attitude-emoi/internal/importer"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	episodesCmd := &cobra.Command{
		Use:   "episodes",
		Short: "List and import podcast episodes",
	}
	episodesCmd.AddCommand(newEpisodesListCommand(ctx))
	episodesCmd.AddCommand(newEpisodesImportCommand(ctx))
	return episodesCmd
}

func newEpisodesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List episodes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(c *di.Container) error {
				list, err := c.Repositories().Episodes.List(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, entry := range list {
					meta := entry.Meta
					number := ""
					if meta.EpisodeNumber > 0 {
						number = strconv.Itoa(meta.EpisodeNumber)
					}
					rows = append(rows, []string{number, meta.Slug, meta.Title, string(meta.Type), dateColumn(meta.Date)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "Slug", "Title", "Type", "Date"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
}

func newEpisodesImportCommand(ctx *commandContext) *cobra.Command {
	var (
		feedURL  string
		feedFile string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import new episodes from an RSS feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := episodecmd.ImportEpisodesCommand{URL: strings.TrimSpace(feedURL)}
			if path := strings.TrimSpace(feedFile); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read feed: %w", err)
				}
				msg.XML = string(data)
			}
			if msg.URL == "" && msg.XML == "" {
				return errors.New("either --url or --file is required")
			}

			var result importer.Result
			msg.ResultCallback = func(r importer.Result) { result = r }

			return ctx.withContainer(cmd.Context(), cmd.ErrOrStderr(), func(*di.Container) error {
				if err := dispatcher.Dispatch(cmd.Context(), msg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "found %d, imported %d, skipped %d\n", result.Found, result.Imported, result.Skipped)
				for _, slug := range result.Slugs {
					fmt.Fprintf(cmd.OutOrStdout(), "  + %s\n", slug)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&feedURL, "url", "", "Feed URL to fetch")
	cmd.Flags().StringVar(&feedFile, "file", "", "Local feed XML file")
	return cmd
}
